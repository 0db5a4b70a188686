// Command schemagen-mcp serves schema compilation over the Model Context
// Protocol on stdio.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/figadore/json-schema-generator/internal/cliutil"
	"github.com/figadore/json-schema-generator/internal/mcpserver"
)

func main() {
	if err := mcpserver.LoadDotEnv(".env"); err != nil {
		cliutil.PrintError(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpserver.Run(ctx); err != nil {
		cliutil.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
