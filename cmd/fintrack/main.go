package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/user"
	"fintrack/internal/web"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	store, cleanup, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer cleanup()

	// The event pipeline is optional: without a broker the app runs
	// standalone and mutations simply are not mirrored.
	var opts []ledger.Option
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, events disabled", applog.FieldError, err)
		} else {
			defer client.Close()
			opts = append(opts, ledger.WithPublisher(client))
			logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange)
		}
	}
	ledgers := ledger.NewService(store, opts...)

	users, err := user.NewManager(ctx, cfg.DataDir)
	if err != nil {
		logger.Error("Failed to initialize user store", applog.FieldError, err)
		os.Exit(1)
	}

	srv, err := web.New(users, ledgers, cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		logger.Error("Failed to build web server", applog.FieldError, err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        srv.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
