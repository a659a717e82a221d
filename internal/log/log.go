// Package log centralizes slog setup and the field names used across the
// application so log output stays greppable.
package log

import (
	"log/slog"
	"os"
)

// Common structured field names.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldUsername  = "username"
	FieldTxID      = "transaction_id"
	FieldRoom      = "room"
	FieldCurrency  = "currency"
	FieldAction    = "action"
	FieldError     = "error"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentWeb     = "web"
	ComponentConsole = "console"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentUsers   = "users"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)

// Setup installs a text handler on stdout as the default logger and returns
// it. Every binary calls this first.
func Setup(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// ForComponent returns the default logger tagged with a component field.
func ForComponent(name string) *slog.Logger {
	return slog.Default().With(FieldComponent, name)
}
