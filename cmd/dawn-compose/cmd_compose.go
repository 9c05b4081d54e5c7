package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dawn-engine/dawn-compose/internal"
	"github.com/dawn-engine/dawn-compose/pkg/dawn"
)

type ComposeParams struct {
	GlobalSettings
	dawn.ComposeParams
}

//go:embed cmd_compose_help.txt
var composeHelp string

func init() {
	composeHelp = strings.TrimSpace(internal.Colorize(composeHelp))
}

func GetComposeParams(settings GlobalSettings, stdout io.Writer, args []string) (*ComposeParams, error) {
	flagset := flag.NewFlagSet("compose", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), composeHelp)
		flagset.PrintDefaults()
	}

	params := ComposeParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Dist, "dist", "", "path to the distribution folder (required)")
	flagset.BoolVar(&params.Dev, "dev", false, "build the wasm module in development mode (default is release mode)")
	flagset.BoolVar(&params.DryRun, "dry-run", false, "print the commands that would run without executing them")
	flagset.BoolVar(&params.Verify, "verify", false, "compile the produced wasm modules after the build to validate them")
	flagset.BoolVar(&params.Manifest, "manifest", false, "write <dist>/manifest.yaml and show changes since the previous compose")
	flagset.BoolVar(&params.Color, "color", internal.IsTerminal(stdout), "use colored output in manifest diffs")
	flagset.IntVar(&params.Context, "context", 4, "number of lines of context in manifest diffs")

	flagset.Parse(args)

	if flagset.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(flagset.Args(), " "))
	}
	if params.Dist == "" {
		return nil, fmt.Errorf("--dist is required")
	}

	dist, err := filepath.Abs(params.Dist)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dist path: %w", err)
	}
	params.Dist = dist

	return &params, nil
}

func Compose(ctx context.Context, commander dawn.Commander, params ComposeParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)
	return commander.Compose(ctx, params.ComposeParams)
}
