package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chart-advisor/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err := newRootCmd().ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if serr := logger.Shutdown(shutdownCtx); serr != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush traces: %v\n", serr)
	}
	cancel()
	stop()

	if err != nil {
		os.Exit(1)
	}
}
