/*
Package main is the entry point for the stub chat server.

It serves the in-memory protocol double on a local port for development of
rendering layers, handling operating system interrupt signals (SIGINT,
SIGTERM) for a graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tabchat/internal/pkg/logx"
	"tabchat/internal/stub"
)

func main() {
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "3001"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: invalid PORT environment variable: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(os.Getenv("ENVIRONMENT") != "production")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     stub.NewServer().Router(),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Stub chat server listening on ws://localhost:%d", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Stub server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Stub server forced to shutdown")
	}

	logx.Info("Stub server gracefully stopped.")
}
