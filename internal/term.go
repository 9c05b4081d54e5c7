package internal

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether w writes directly to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
