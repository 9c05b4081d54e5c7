// Package dawn builds and serves the DAWN WebAssembly distribution by driving
// the external wasm-pack and cargo toolchains.
package dawn

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/dawn-engine/dawn-compose/internal"
	"github.com/dawn-engine/dawn-compose/internal/shell"
)

// Toolchain names the external executables and project paths that commands
// are built from. Relative paths are resolved by the tools against the
// working directory, normally the project root.
type Toolchain struct {
	WasmPack   string
	Cargo      string
	WasmCrate  string
	AssetsDir  string
	PackageBin string
	ServerBin  string
}

func DefaultToolchain() Toolchain {
	return Toolchain{
		WasmPack:   "wasm-pack",
		Cargo:      "cargo",
		WasmCrate:  "crates/wasm",
		AssetsDir:  "assets",
		PackageBin: "dawn-package",
		ServerBin:  "dawn-wasm-server",
	}
}

// AssetsArchive is the name of the packed asset archive written into dist.
const AssetsArchive = "assets.dac"

// WasmBuild compiles the wasm crate into dist/pkg for the web target.
// Exactly one of --dev or --release is always passed.
func (toolchain Toolchain) WasmBuild(dist string, dev bool) shell.Command {
	mode := "--release"
	if dev {
		mode = "--dev"
	}
	return shell.Command{
		Args: []string{
			toolchain.WasmPack, "build", toolchain.WasmCrate,
			"--out-dir", filepath.Join(dist, "pkg"),
			"--target", "web",
			mode,
		},
	}
}

// PackageAssets packs the assets directory into dist/assets.dac.
func (toolchain Toolchain) PackageAssets(dist string) shell.Command {
	return shell.Command{
		Args: []string{
			toolchain.Cargo, "run", "--bin", toolchain.PackageBin, "--",
			"--assets-dir", toolchain.AssetsDir,
			"--output-file", filepath.Join(dist, AssetsArchive),
		},
	}
}

func (toolchain Toolchain) ServeDist(dist string, port int) shell.Command {
	return shell.Command{
		Args: []string{
			toolchain.Cargo, "run", "--bin", toolchain.ServerBin, "--",
			"--dist", dist,
			"--port", strconv.Itoa(port),
		},
	}
}

type Commander struct {
	Toolchain Toolchain
	Executor  shell.Executor
}

func (commander Commander) runner(ctx context.Context, dryRun bool) shell.Runner {
	if dryRun {
		return shell.Runner{Executor: shell.Printer{Out: internal.Stdout(ctx)}}
	}
	return shell.Runner{Executor: commander.Executor}
}
