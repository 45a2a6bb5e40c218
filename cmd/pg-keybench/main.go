// Command pg-keybench measures bulk key lookup strategies against PostgreSQL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/eunmann/pg-keybench/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.RunContext(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
