package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dawn-engine/dawn-compose/internal"
	"github.com/dawn-engine/dawn-compose/pkg/dawn"
)

type DoctorParams struct {
	GlobalSettings
}

//go:embed cmd_doctor_help.txt
var doctorHelp string

func init() {
	doctorHelp = strings.TrimSpace(internal.Colorize(doctorHelp))
}

func GetDoctorParams(settings GlobalSettings, args []string) (*DoctorParams, error) {
	flagset := flag.NewFlagSet("doctor", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), doctorHelp)
		flagset.PrintDefaults()
	}

	params := DoctorParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.Parse(args)

	if flagset.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(flagset.Args(), " "))
	}

	return &params, nil
}

func Doctor(ctx context.Context, commander dawn.Commander, params DoctorParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	statuses := commander.Doctor(ctx)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	tbl.AppendHeader(table.Row{"tool", "executable", "version", "minimum", "status"})

	var failed int
	for _, status := range statuses {
		result := "ok"
		if !status.OK() {
			result = status.Problem
			failed++
		}
		tbl.AppendRow(table.Row{status.Name, status.Executable, status.Version, status.Minimum, result})
	}

	if _, err := fmt.Fprintln(internal.Stdout(ctx), tbl.Render()); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tools failed checks", failed, len(statuses))
	}
	return nil
}
