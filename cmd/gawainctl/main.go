package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sergawain/gawain/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		slog.Error("Command failed", slog.String("type", "sys"), slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}
