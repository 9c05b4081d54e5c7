package dawn

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dawn-engine/dawn-compose/internal"
	"github.com/dawn-engine/dawn-compose/internal/manifest"
	"github.com/dawn-engine/dawn-compose/internal/shell"
	"github.com/dawn-engine/dawn-compose/internal/text"
	"github.com/dawn-engine/dawn-compose/internal/wasm"
)

type ComposeParams struct {
	Dist   string
	Dev    bool
	DryRun bool

	// Verify compiles the produced wasm modules in-process after the build.
	Verify bool

	// Manifest writes dist/manifest.yaml and diffs it against the previous one.
	Manifest bool
	Color    bool
	Context  int
}

func (params ComposeParams) mode() string {
	if params.Dev {
		return "dev"
	}
	return "release"
}

type step struct {
	Name    string
	Command shell.Command
}

// Compose builds the wasm module and then packs the assets. The first failing
// step aborts the sequence.
func (commander Commander) Compose(ctx context.Context, params ComposeParams) error {
	defer internal.DebugTimer(ctx, "compose "+params.mode())()

	dist, err := filepath.Abs(params.Dist)
	if err != nil {
		return fmt.Errorf("failed to resolve dist path: %w", err)
	}

	runner := commander.runner(ctx, params.DryRun)

	steps := []step{
		{Name: "build wasm module", Command: commander.Toolchain.WasmBuild(dist, params.Dev)},
		{Name: "package assets", Command: commander.Toolchain.PackageAssets(dist)},
	}

	for _, step := range steps {
		done := internal.DebugTimer(ctx, step.Name)
		_, err := runner.Run(ctx, step.Command)
		done()
		if err != nil {
			return fmt.Errorf("failed to %s: %w", step.Name, err)
		}
	}

	if params.DryRun {
		return nil
	}

	if params.Verify {
		if err := verify(ctx, dist); err != nil {
			return fmt.Errorf("failed to verify wasm module: %w", err)
		}
	}

	if params.Manifest {
		return writeManifest(ctx, dist, params)
	}

	return nil
}

func verify(ctx context.Context, dist string) error {
	defer internal.DebugTimer(ctx, "verify")()

	modules, err := wasm.InspectDir(ctx, filepath.Join(dist, "pkg"))
	if err != nil {
		return err
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	tbl.AppendHeader(table.Row{"module", "size", "imports", "exports", "memories"})

	for _, module := range modules {
		rel, err := filepath.Rel(dist, module.Path)
		if err != nil {
			return err
		}
		tbl.AppendRow(table.Row{
			filepath.ToSlash(rel),
			strconv.Itoa(module.Size),
			len(module.Imports),
			wasm.Summary(module.Exports, 4),
			wasm.Summary(module.Memories, 2),
		})
	}

	_, err = fmt.Fprintln(internal.Stdout(ctx), tbl.Render())
	return err
}

func writeManifest(ctx context.Context, dist string, params ComposeParams) error {
	defer internal.DebugTimer(ctx, "manifest")()

	revision, err := manifest.Revision(".")
	if err != nil {
		return fmt.Errorf("failed to read source revision: %w", err)
	}

	next, err := manifest.Build(dist, params.mode(), revision)
	if err != nil {
		return fmt.Errorf("failed to build manifest: %w", err)
	}

	path := filepath.Join(dist, manifest.Filename)

	var previous manifest.Manifest
	found, err := internal.ReadYAML(path, &previous)
	if err != nil {
		return fmt.Errorf("failed to read previous manifest: %w", err)
	}

	if err := internal.WriteYAML(path, next); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if !found {
		_, err := fmt.Fprintf(internal.Stdout(ctx), "wrote %s with %d artifacts\n", path, len(next.Artifacts))
		return err
	}

	previousFile, err := text.ToYamlFile("previous", previous)
	if err != nil {
		return err
	}
	nextFile, err := text.ToYamlFile("current", next)
	if err != nil {
		return err
	}

	diff := text.DiffFunc(text.Diff)
	if params.Color {
		diff = text.DiffColorized
	}

	if changes := diff(previousFile, nextFile, params.Context); changes != "" {
		_, err = fmt.Fprint(internal.Stdout(ctx), changes)
		return err
	}

	return internal.Warning("dist is unchanged since the previous manifest")
}
