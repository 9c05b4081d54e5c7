package wasm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero"

	"github.com/dawn-engine/dawn-compose/internal"
)

// Module summarizes a compiled WebAssembly module.
type Module struct {
	Path     string
	Size     int
	Imports  []string
	Exports  []string
	Memories []string
}

// Inspect compiles wasm without instantiating it. Imports are not resolved, so
// modules produced for the browser (wasm-bindgen glue) compile fine here.
func Inspect(ctx context.Context, path string, wasm []byte) (module Module, err error) {
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	defer func() {
		err = internal.CloseError(err, runtime.Close(ctx))
	}()

	compiled, err := runtime.CompileModule(ctx, wasm)
	if err != nil {
		return Module{}, fmt.Errorf("failed to compile module: %w", err)
	}

	module = Module{Path: path, Size: len(wasm)}

	for _, fn := range compiled.ImportedFunctions() {
		mod, name, _ := fn.Import()
		module.Imports = append(module.Imports, mod+"."+name)
	}
	for name := range compiled.ExportedFunctions() {
		module.Exports = append(module.Exports, name)
	}
	for name := range compiled.ExportedMemories() {
		module.Memories = append(module.Memories, name)
	}

	slices.Sort(module.Imports)
	slices.Sort(module.Exports)
	slices.Sort(module.Memories)

	return module, nil
}

// InspectDir inspects every .wasm file directly under dir. It fails when dir
// holds no module at all.
func InspectDir(ctx context.Context, dir string) ([]Module, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.wasm"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no wasm module found in %s", dir)
	}

	modules := make([]Module, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		module, err := Inspect(ctx, path, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		modules = append(modules, module)
	}

	return modules, nil
}

// Summary lists up to limit names followed by a count of the omitted ones.
func Summary(names []string, limit int) string {
	if len(names) <= limit {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(names[:limit], ", "), len(names)-limit)
}
