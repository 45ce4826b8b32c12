package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"corpusreduce/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		// A second signal falls through to the default handler and kills a
		// run that is blocked on its input.
		<-ctx.Done()
		stop()
	}()
	result, err := cli.Run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(result.ExitCode)
}
