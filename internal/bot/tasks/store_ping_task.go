package tasks

import (
	"context"
	"fmt"
	"time"
)

// newStorePingTask creates the scheduled task that checks the store connection.
func newStorePingTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", StorePing)

	return func(ctx context.Context) error {
		startTime := time.Now()
		err := deps.Store.Ping(ctx)
		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Store ping failed", "error", err, "persistent", deps.Store.Persistent(), "duration", duration)
			return fmt.Errorf("store ping failed: %w", err)
		}

		log.DebugContext(ctx, "Store ping succeeded", "persistent", deps.Store.Persistent(), "duration", duration)
		return nil
	}
}
