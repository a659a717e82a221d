package main

import (
	"flag"
	"os"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/console"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
)

func main() {
	username := flag.String("user", "local", "ledger to open")
	flag.Parse()

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

	l, err := ledger.NewService(store).Open(ctx, *username)
	if err != nil {
		logger.Error("Failed to open ledger",
			applog.FieldUsername, *username,
			applog.FieldError, err)
		os.Exit(1)
	}

	console.New(l, os.Stdin, os.Stdout).Run(ctx)
}
