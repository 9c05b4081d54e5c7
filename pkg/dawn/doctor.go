package dawn

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"golang.org/x/mod/semver"

	"github.com/dawn-engine/dawn-compose/internal/shell"
)

// Minimum tool versions known to build the project.
const (
	MinWasmPack = "v0.12.0"
	MinCargo    = "v1.74.0"
)

type ToolStatus struct {
	Name       string
	Executable string
	Version    string
	Minimum    string
	Problem    string
}

func (status ToolStatus) OK() bool { return status.Problem == "" }

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// Doctor runs every tool with --version. A broken tool is recorded in its
// status and does not stop the remaining checks.
func (commander Commander) Doctor(ctx context.Context) []ToolStatus {
	runner := shell.Runner{Executor: commander.Executor}

	tools := []ToolStatus{
		{Name: "wasm-pack", Executable: commander.Toolchain.WasmPack, Minimum: MinWasmPack},
		{Name: "cargo", Executable: commander.Toolchain.Cargo, Minimum: MinCargo},
	}

	for i, tool := range tools {
		var stdout bytes.Buffer

		code, err := runner.Run(ctx, shell.Command{
			Args:         []string{tool.Executable, "--version"},
			AllowFailure: true,
			Stdout:       &stdout,
		})

		switch {
		case err != nil:
			tool.Problem = err.Error()
		case code != 0:
			tool.Problem = fmt.Sprintf("--version exited with code %d", code)
		default:
			tool.Version = versionPattern.FindString(stdout.String())
			if tool.Version == "" {
				tool.Problem = "could not parse version"
			} else if semver.Compare("v"+tool.Version, tool.Minimum) < 0 {
				tool.Problem = "version below minimum " + tool.Minimum
			}
		}

		tools[i] = tool
	}

	return tools
}
