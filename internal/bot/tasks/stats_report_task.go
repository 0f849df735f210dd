package tasks

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// newStatsReportTask creates the scheduled task that logs every configured
// figure in one line. A failing figure is reported and the rest still logged.
func newStatsReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", StatsReport)

	return func(ctx context.Context) error {
		names := slices.Sorted(maps.Keys(deps.Stats))
		attrs := make([]any, 0, 2*len(names))
		var errs []error

		for _, name := range names {
			n, err := deps.Stats[name](ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			attrs = append(attrs, name, n)
		}

		log.InfoContext(ctx, "Usage report", attrs...)
		if len(errs) > 0 {
			err := errors.Join(errs...)
			log.WarnContext(ctx, "Some figures could not be computed", "error", err)
			return fmt.Errorf("stats report incomplete: %w", err)
		}
		return nil
	}
}
