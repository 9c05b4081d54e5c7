package dawn

import (
	"context"
	"fmt"
	"path/filepath"
)

const DefaultPort = 8000

type ServeParams struct {
	Dist   string
	Port   int
	DryRun bool
}

// Serve runs the local server over the dist folder and blocks until it exits.
func (commander Commander) Serve(ctx context.Context, params ServeParams) error {
	if params.Port < 1 || params.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", params.Port)
	}

	dist, err := filepath.Abs(params.Dist)
	if err != nil {
		return fmt.Errorf("failed to resolve dist path: %w", err)
	}

	runner := commander.runner(ctx, params.DryRun)
	if _, err := runner.Run(ctx, commander.Toolchain.ServeDist(dist, params.Port)); err != nil {
		return fmt.Errorf("failed to serve %s: %w", dist, err)
	}

	return nil
}
