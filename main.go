package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/tmgrammar/cli"
	"github.com/ardnew/tmgrammar/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error("tmg failed", slog.Any("error", err))
		os.Exit(exitCode(err))
	}
}

// exitCode honors errors that carry their own status, such as kong parse
// errors. Everything else exits 1.
func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return 1
}
