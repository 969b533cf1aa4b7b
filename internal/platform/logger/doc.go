// Package logger configures the process-wide slog JSON logger from server
// settings and carries request-scoped loggers through a context.
package logger
