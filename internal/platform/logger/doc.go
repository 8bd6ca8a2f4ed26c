// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// logging with configurable levels and formats, and carries loggers through
// context.Context so stores and services log with the caller's attributes.
package logger
