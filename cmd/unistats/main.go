// Command unistats is the command-line front end of the university
// statistics toolkit. It merges enrollment sheets, exports long-format
// tables and chart images, prints category hierarchies and serves the
// interactive dashboard.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
