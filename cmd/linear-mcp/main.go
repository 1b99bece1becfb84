package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"linear-mcp/cmd/linear-mcp/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
