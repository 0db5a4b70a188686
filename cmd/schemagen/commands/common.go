// Package commands provides the command handler for schemagen.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/figadore/json-schema-generator/compiler"
	"github.com/figadore/json-schema-generator/internal/cliutil"
)

// Output format constants
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// MaxIndent is the largest accepted -indent value.
const MaxIndent = 10

var (
	// ErrUsage is returned after usage has been printed for bad arguments.
	ErrUsage = errors.New("usage error")
	// ErrDrift is returned by -check when the compiled schema differs from
	// the file on disk.
	ErrDrift = errors.New("compiled schema differs")
)

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s", format, FormatJSON, FormatYAML)
	}
	return nil
}

// ValidateIndent checks that indent is within [0, MaxIndent].
func ValidateIndent(indent int) error {
	if indent < 0 || indent > MaxIndent {
		return fmt.Errorf("invalid indent %d: must be between 0 and %d", indent, MaxIndent)
	}
	return nil
}

// ValidateOutputPath checks if the output path is safe to write to. An
// existing output file only produces a warning on stderr.
func ValidateOutputPath(outputPath string, inputPaths []string, stderr io.Writer) error {
	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	for _, inputPath := range inputPaths {
		if inputPath == StdinFilePath {
			continue
		}
		absInputPath, err := filepath.Abs(inputPath)
		if err != nil {
			return fmt.Errorf("invalid input path %s: %w", inputPath, err)
		}
		if absOutputPath == absInputPath {
			return fmt.Errorf("output file %s would overwrite input file %s", outputPath, inputPath)
		}
	}

	if _, err := os.Stat(outputPath); err == nil {
		cliutil.PrintWarning(stderr, fmt.Sprintf("output file %s already exists and will be overwritten", outputPath))
	}
	return nil
}

// Render encodes a compiled schema in format. JSON is indented with indent
// spaces, or compact when indent is 0. The output ends with a newline.
func Render(result *compiler.Result, format string, indent int) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = result.JSON(strings.Repeat(" ", indent))
	case FormatYAML:
		data, err = result.YAML()
	default:
		return nil, fmt.Errorf("invalid format for output: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("marshaling to %s: %w", format, err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}

// FormatSpecPath returns a display-friendly path for the input schema.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}
