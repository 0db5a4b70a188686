// Command schemagen compiles a schema file and the schemas it references
// into one self-contained schema printed as JSON.
package main

import (
	"errors"
	"os"

	"github.com/figadore/json-schema-generator/cmd/schemagen/commands"
	"github.com/figadore/json-schema-generator/internal/cliutil"
)

func main() {
	if err := commands.HandleGenerate(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, commands.ErrUsage) {
			cliutil.PrintError(os.Stderr, err)
		}
		os.Exit(1)
	}
}
