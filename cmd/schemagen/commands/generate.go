package commands

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	schemagen "github.com/figadore/json-schema-generator"
	"github.com/figadore/json-schema-generator/compiler"
	"github.com/figadore/json-schema-generator/internal/cliutil"
	"github.com/figadore/json-schema-generator/internal/fileutil"
	"github.com/figadore/json-schema-generator/resolver"
)

// GenerateFlags contains flags for the generate command
type GenerateFlags struct {
	Output         string
	Format         string
	Indent         int
	Extension      string
	BaseDir        string
	Check          string
	RebaseSelfRefs bool
	Verify         bool
	Verbose        bool
	Version        bool
}

// SetupGenerateFlags creates and configures a FlagSet for the generate command.
// Returns the FlagSet and a GenerateFlags struct with bound flag variables.
func SetupGenerateFlags() (*flag.FlagSet, *GenerateFlags) {
	fs := flag.NewFlagSet("schemagen", flag.ContinueOnError)
	flags := &GenerateFlags{}

	fs.StringVar(&flags.Output, "o", "", "write the compiled schema to this file instead of stdout")
	fs.StringVar(&flags.Output, "output", "", "write the compiled schema to this file instead of stdout")
	fs.StringVar(&flags.Format, "f", FormatJSON, "output format: json or yaml")
	fs.StringVar(&flags.Format, "format", FormatJSON, "output format: json or yaml")
	fs.IntVar(&flags.Indent, "indent", 4, "spaces of JSON indentation (0 = compact)")
	fs.StringVar(&flags.Extension, "ext", "", "file extension of referenced schemas (default .yaml)")
	fs.StringVar(&flags.BaseDir, "base-dir", "", "directory referenced schemas are read from (default: the input's directory)")
	fs.StringVar(&flags.Check, "check", "", "compare the compiled schema with this file and fail if they differ")
	fs.BoolVar(&flags.RebaseSelfRefs, "rebase-self-refs", false, "rewrite '#/...' and own-id references to where their schema ends up in the output")
	fs.BoolVar(&flags.Verify, "verify", false, "warn about references in the output that do not resolve")
	fs.BoolVar(&flags.Verbose, "v", false, "log resolution steps to stderr")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log resolution steps to stderr")
	fs.BoolVar(&flags.Version, "version", false, "print version information and exit")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: schemagen [flags] <fileName|->\n\n")
		cliutil.Writef(fs.Output(), "Compile a schema and the schemas it references into one self-contained schema.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  schemagen schemas/car.yaml > car.json\n")
		cliutil.Writef(fs.Output(), "  schemagen -format yaml -o car.compiled.yaml schemas/car.yaml\n")
		cliutil.Writef(fs.Output(), "  schemagen -check car.json schemas/car.yaml\n")
		cliutil.Writef(fs.Output(), "  cat car.yaml | schemagen -base-dir schemas -\n")
		cliutil.Writef(fs.Output(), "\nNotes:\n")
		cliutil.Writef(fs.Output(), "  - A reference \"part\" or \"part#/definitions/wheel\" is read from part.yaml\n")
		cliutil.Writef(fs.Output(), "  - Referenced schemas are added under the top-level \"definitions\"\n")
	}

	return fs, flags
}

// HandleGenerate executes the generate command. Reading from stdin is
// selected with "-" as the file name.
func HandleGenerate(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs, flags := SetupGenerateFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		// flag has already reported the problem and printed usage
		return ErrUsage
	}

	if flags.Version {
		cliutil.Writef(stdout, "schemagen v%s\n", schemagen.Version())
		return nil
	}

	switch fs.NArg() {
	case 1:
	case 0:
		cliutil.Writef(stderr, "No fileName arg specified\n\n")
		fs.Usage()
		return ErrUsage
	default:
		cliutil.Writef(stderr, "Too many args\n\n")
		fs.Usage()
		return ErrUsage
	}

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	if err := ValidateIndent(flags.Indent); err != nil {
		return err
	}
	if flags.Output != "" && flags.Check != "" {
		return fmt.Errorf("-o and -check cannot be used together")
	}

	filePath := fs.Arg(0)
	result, err := compiler.GenerateWithOptions(generateOptions(filePath, flags, stdin, stderr)...)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		cliutil.PrintWarning(stderr, w)
	}

	data, err := Render(result, flags.Format, flags.Indent)
	if err != nil {
		return err
	}

	switch {
	case flags.Check != "":
		return checkOutput(flags.Check, data, stdout, stderr)
	case flags.Output != "":
		if err := ValidateOutputPath(flags.Output, []string{filePath}, stderr); err != nil {
			return err
		}
		if err := fileutil.WriteOutput(flags.Output, data); err != nil {
			return err
		}
		if flags.Verbose {
			cliutil.Writef(stderr, "Output written to: %s\n", flags.Output)
		}
		return nil
	default:
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}
}

func generateOptions(filePath string, flags *GenerateFlags, stdin io.Reader, stderr io.Writer) []compiler.Option {
	var opts []compiler.Option
	if filePath == StdinFilePath {
		opts = append(opts,
			compiler.WithReader(stdin),
			compiler.WithSourceName(FormatSpecPath(filePath)))
	} else {
		opts = append(opts, compiler.WithFilePath(filePath))
	}
	if flags.BaseDir != "" {
		opts = append(opts, compiler.WithBaseDir(flags.BaseDir))
	}
	if flags.Extension != "" {
		opts = append(opts, compiler.WithExtension(flags.Extension))
	}
	if flags.Verbose {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, compiler.WithLogger(resolver.NewSlogAdapter(slog.New(handler))))
	}
	return append(opts,
		compiler.WithRebaseSelfRefs(flags.RebaseSelfRefs),
		compiler.WithVerifyPointers(flags.Verify))
}

// checkOutput compares data with the file at path, printing a diff to
// stdout when they differ.
func checkOutput(path string, data []byte, stdout, stderr io.Writer) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if bytes.Equal(existing, data) {
		cliutil.Writef(stderr, "%s is up to date\n", path)
		return nil
	}

	diffs := DiffLines(string(existing), string(data))
	if HasChanges(diffs) {
		WriteDiff(stdout, path, diffs)
	}
	return fmt.Errorf("%w from %s", ErrDrift, path)
}
