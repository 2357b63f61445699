// Command lendingctl drives the lending ledger from the shell: schema migrations, catalog and member
// registration, borrowing, returns, fine payment and the member read models.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(os.Stdout, os.Stderr, openPostgresStore)

	err := c.execute(ctx, os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	}

	stop()
	os.Exit(exitCode(err))
}
