// Package tasks implements the scheduled maintenance tasks of both bots:
// checking the store connection and periodically logging usage figures.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/facto/internal/database"
)

// StatsFunc reports one named figure for the stats report.
type StatsFunc func(ctx context.Context) (int64, error)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Pinger
	Stats  map[string]StatsFunc
}
