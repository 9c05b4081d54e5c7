package main

import (
	"flag"

	"github.com/davidmdm/conf"

	"github.com/dawn-engine/dawn-compose/pkg/dawn"
)

type GlobalSettings struct {
	Debug bool
}

func RegisterGlobalFlags(flagset *flag.FlagSet, settings *GlobalSettings) {
	flagset.BoolVar(&settings.Debug, "debug", settings.Debug, "print every external command and step timings to stderr")
}

// Config is read from the environment. Every toolchain value defaults to the
// layout of the DAWN repository.
type Config struct {
	Toolchain dawn.Toolchain
	Debug     bool
}

func getConfig() (cfg Config, err error) {
	defaults := dawn.DefaultToolchain()

	conf.Var(conf.Environ, &cfg.Toolchain.WasmPack, "DAWN_WASM_PACK", conf.Default(defaults.WasmPack))
	conf.Var(conf.Environ, &cfg.Toolchain.Cargo, "DAWN_CARGO", conf.Default(defaults.Cargo))
	conf.Var(conf.Environ, &cfg.Toolchain.WasmCrate, "DAWN_WASM_CRATE", conf.Default(defaults.WasmCrate))
	conf.Var(conf.Environ, &cfg.Toolchain.AssetsDir, "DAWN_ASSETS_DIR", conf.Default(defaults.AssetsDir))
	conf.Var(conf.Environ, &cfg.Toolchain.PackageBin, "DAWN_PACKAGE_BIN", conf.Default(defaults.PackageBin))
	conf.Var(conf.Environ, &cfg.Toolchain.ServerBin, "DAWN_SERVER_BIN", conf.Default(defaults.ServerBin))
	conf.Var(conf.Environ, &cfg.Debug, "DAWN_DEBUG")

	err = conf.Environ.Parse()
	return
}
