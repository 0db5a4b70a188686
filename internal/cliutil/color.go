package cliutil

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Palette holds the formatting functions used for terminal output. Every
// function behaves like fmt.Sprintf when color is disabled.
type Palette struct {
	Error   func(string, ...any) string
	Warning func(string, ...any) string
	Added   func(string, ...any) string
	Removed func(string, ...any) string
	Header  func(string, ...any) string
}

// NewPalette returns a colored palette when w is a terminal and NO_COLOR is
// unset, and a plain one otherwise.
func NewPalette(w io.Writer) *Palette {
	if !IsTerminal(w) || os.Getenv("NO_COLOR") != "" {
		return plainPalette()
	}
	return &Palette{
		Error:   sprintf(color.FgRed, color.Bold),
		Warning: sprintf(color.FgYellow),
		Added:   sprintf(color.FgGreen),
		Removed: sprintf(color.FgRed),
		Header:  sprintf(color.FgCyan),
	}
}

func plainPalette() *Palette {
	return &Palette{
		Error:   fmt.Sprintf,
		Warning: fmt.Sprintf,
		Added:   fmt.Sprintf,
		Removed: fmt.Sprintf,
		Header:  fmt.Sprintf,
	}
}

func sprintf(attrs ...color.Attribute) func(string, ...any) string {
	c := color.New(attrs...)
	// color decides on its own from stdout; the writer was already checked.
	c.EnableColor()
	return c.SprintfFunc()
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
