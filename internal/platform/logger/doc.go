// Package logger configures the application's structured slog logger and
// provides helpers for carrying request-scoped loggers through contexts.
package logger
