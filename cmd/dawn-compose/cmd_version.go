package main

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dawn-engine/dawn-compose/internal"
)

func Version(ctx context.Context) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		tbl.AppendRow(table.Row{"dawn-compose", "(unknown)"})
		_, err := fmt.Fprintln(internal.Stdout(ctx), tbl.Render())
		return err
	}

	tbl.AppendRow(table.Row{"dawn-compose", info.Main.Version})
	tbl.AppendRow(table.Row{"go", info.GoVersion})

	for _, mod := range info.Deps {
		if !slices.Contains([]string{"github.com/tetratelabs/wazero", "github.com/go-git/go-git/v5"}, mod.Path) {
			continue
		}
		tbl.AppendRow(table.Row{mod.Path, mod.Version})
	}

	_, err := fmt.Fprintln(internal.Stdout(ctx), tbl.Render())
	return err
}
