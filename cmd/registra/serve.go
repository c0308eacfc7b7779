package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/registradesk/registra/internal/config"
	"github.com/registradesk/registra/internal/logger"
	natsembed "github.com/registradesk/registra/internal/nats"
	"github.com/registradesk/registra/internal/registryd"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local registry API server backed by embedded NATS JetStream",
	Long: `Run a local registry API server backed by embedded NATS JetStream.

Records are persisted to a JetStream key-value bucket under the data
directory, so a single office can run fully self-contained: one serve
process, any number of intake sessions pointed at it.

  registra serve
  registra intake --type death --registry http://localhost:8484`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	listen := cfg.Listen
	if serveListen != "" {
		listen = serveListen
	}

	ns, err := natsembed.StartEmbedded(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("starting embedded NATS: %w", err)
	}

	nc, err := natsembed.ConnectInProcess(ns)
	if err != nil {
		ns.Shutdown()
		return fmt.Errorf("connecting to embedded NATS: %w", err)
	}
	defer func() {
		if err := natsembed.Shutdown(nc, ns); err != nil {
			logger.Warn("NATS shutdown: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	kv, err := natsembed.RecordBucket(ctx, nc)
	cancel()
	if err != nil {
		return fmt.Errorf("opening record bucket: %w", err)
	}

	handler := registryd.NewHandler(registryd.NewKVStore(kv))
	srv := registryd.NewServer(listen, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Registry API listening on %s (data dir %s)", listen, cfg.DataDir)
		fmt.Printf("registra registry listening on %s\n", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("registry server: %w", err)
	case sig := <-sigCh:
		logger.Info("Received %s, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down registry server: %w", err)
	}
	return nil
}
