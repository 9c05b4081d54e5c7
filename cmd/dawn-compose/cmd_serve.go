package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dawn-engine/dawn-compose/internal"
	"github.com/dawn-engine/dawn-compose/pkg/dawn"
)

type ServeParams struct {
	GlobalSettings
	dawn.ServeParams
}

//go:embed cmd_serve_help.txt
var serveHelp string

func init() {
	serveHelp = strings.TrimSpace(internal.Colorize(serveHelp))
}

func GetServeParams(settings GlobalSettings, args []string) (*ServeParams, error) {
	flagset := flag.NewFlagSet("serve", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), serveHelp)
		flagset.PrintDefaults()
	}

	params := ServeParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Dist, "dist", "", "path to the distribution folder (required)")
	flagset.IntVar(&params.Port, "port", dawn.DefaultPort, "port to serve on")
	flagset.BoolVar(&params.DryRun, "dry-run", false, "print the server command without executing it")

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

func Serve(ctx context.Context, commander dawn.Commander, params ServeParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)
	return commander.Serve(ctx, params.ServeParams)
}
