package commands

import (
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/figadore/json-schema-generator/internal/cliutil"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 2

// DiffLines returns a line-level diff turning want into got.
func DiffLines(want, got string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffMain(a, b, false)
	return dmp.DiffCharsToLines(diffs, lines)
}

// HasChanges reports whether diffs contains an insertion or deletion.
func HasChanges(diffs []diffmatchpatch.Diff) bool {
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			return true
		}
	}
	return false
}

// WriteDiff prints diffs with "-" for lines only in the file named
// wantName and "+" for lines only in the compiled output. Long unchanged
// runs are elided.
func WriteDiff(w io.Writer, wantName string, diffs []diffmatchpatch.Diff) {
	p := cliutil.NewPalette(w)
	cliutil.Writef(w, "%s\n", p.Header("--- %s", wantName))
	cliutil.Writef(w, "%s\n", p.Header("+++ compiled"))

	for i, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				cliutil.Writef(w, "%s\n", p.Added("+%s", l))
			}
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				cliutil.Writef(w, "%s\n", p.Removed("-%s", l))
			}
		case diffmatchpatch.DiffEqual:
			for _, l := range elide(lines, i > 0, i < len(diffs)-1) {
				cliutil.Writef(w, " %s\n", l)
			}
		}
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// elide keeps contextLines lines after a preceding change and before a
// following one, replacing the rest with "...".
func elide(lines []string, afterChange, beforeChange bool) []string {
	head, tail := 0, 0
	if afterChange {
		head = contextLines
	}
	if beforeChange {
		tail = contextLines
	}
	if len(lines) <= head+tail {
		return lines
	}
	out := make([]string, 0, head+tail+1)
	out = append(out, lines[:head]...)
	out = append(out, "...")
	return append(out, lines[len(lines)-tail:]...)
}
