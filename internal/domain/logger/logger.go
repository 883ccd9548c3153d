// Package logger records store round trips under the db log type.
package logger

import (
	"context"
	"log/slog"
	"time"
)

// SlowQueryThreshold promotes a successful query to a warning.
var SlowQueryThreshold = 250 * time.Millisecond

type QueryLogger struct {
	Operation string
	Query     string
	Args      []any
	StartTime time.Time
}

func NewQueryLogger(operation, query string, args ...any) *QueryLogger {
	return &QueryLogger{
		Operation: operation,
		Query:     query,
		Args:      args,
		StartTime: time.Now(),
	}
}

// Log emits one record for the query. Failures are errors, slow queries are
// warnings and everything else is debug output.
func (l *QueryLogger) Log(err error, rowsAffected int64) {
	took := time.Since(l.StartTime)

	attrs := []slog.Attr{
		slog.String("type", "db"),
		slog.String("operation", l.Operation),
		slog.Duration("took", took),
	}

	switch {
	case err != nil:
		attrs = append(attrs,
			slog.String("query", l.Query),
			slog.Any("args", l.Args),
			slog.Any("error", err))
		slog.LogAttrs(context.Background(), slog.LevelError, "Query failed", attrs...)
	case took >= SlowQueryThreshold:
		attrs = append(attrs,
			slog.String("query", l.Query),
			slog.Int64("affected_rows", rowsAffected))
		slog.LogAttrs(context.Background(), slog.LevelWarn, "Slow query", attrs...)
	default:
		attrs = append(attrs, slog.Int64("affected_rows", rowsAffected))
		slog.LogAttrs(context.Background(), slog.LevelDebug, "Query executed", attrs...)
	}
}
