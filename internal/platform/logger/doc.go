// Package logger builds the JSON slog logger used by the server and moves
// request-scoped loggers through a context.Context.
package logger
