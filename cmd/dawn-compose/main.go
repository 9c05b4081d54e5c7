package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/davidmdm/x/xcontext"

	"github.com/dawn-engine/dawn-compose/internal"
	"github.com/dawn-engine/dawn-compose/internal/shell"
	"github.com/dawn-engine/dawn-compose/pkg/dawn"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if internal.IsWarning(err) {
			return
		}
		os.Exit(exitCode(err))
	}
}

// exitCode propagates the exit code of a failed external tool. Every other
// error exits with 1.
func exitCode(err error) int {
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}

//go:embed cmd_help.txt
var rootHelp string

func init() {
	rootHelp = strings.TrimSpace(internal.Colorize(rootHelp))
}

func run() error {
	ctx, done := xcontext.WithSignalCancelation(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}

	return execute(ctx, os.Args[1:], cfg, shell.Exec{})
}

func execute(ctx context.Context, args []string, cfg Config, executor shell.Executor) error {
	settings := GlobalSettings{Debug: cfg.Debug}

	flagset := flag.NewFlagSet("dawn-compose", flag.ExitOnError)
	flagset.SetOutput(internal.Stdout(ctx))
	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), rootHelp)
		flagset.PrintDefaults()
		fmt.Fprintln(flagset.Output())
	}

	RegisterGlobalFlags(flagset, &settings)

	flagset.Parse(args)

	if flagset.NArg() == 0 {
		flagset.Usage()
		return nil
	}

	commander := dawn.Commander{
		Toolchain: cfg.Toolchain,
		Executor:  executor,
	}

	subcmdArgs := flagset.Args()[1:]

	switch cmd := flagset.Arg(0); cmd {
	case "compose", "build":
		{
			params, err := GetComposeParams(settings, internal.Stdout(ctx), subcmdArgs)
			if err != nil {
				return err
			}
			return Compose(ctx, commander, *params)
		}
	case "serve":
		{
			params, err := GetServeParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Serve(ctx, commander, *params)
		}
	case "doctor":
		{
			params, err := GetDoctorParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Doctor(ctx, commander, *params)
		}
	case "version":
		{
			return Version(ctx)
		}
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}
