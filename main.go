// modefind answers bucketed mode queries from the command line, from
// batch input, or over the network.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"modefind/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "modefind: %v\n", err)
		os.Exit(1)
	}
}
