// Package cliutil provides output helpers shared by the schemagen commands.
package cliutil

import (
	"fmt"
	"io"
	"os"
)

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// PrintError writes "Error: <err>" to w, with the prefix in red when w is a
// terminal.
func PrintError(w io.Writer, err error) {
	p := NewPalette(w)
	Writef(w, "%s %v\n", p.Error("Error:"), err)
}

// PrintWarning writes "Warning: <msg>" to w, with the prefix in yellow when
// w is a terminal.
func PrintWarning(w io.Writer, msg string) {
	p := NewPalette(w)
	Writef(w, "%s %s\n", p.Warning("Warning:"), msg)
}
