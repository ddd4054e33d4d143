package tasks

import (
	"context"
	"fmt"
	"time"
)

// newAutosaveTask flushes session state when it changed since the last save.
func newAutosaveTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskAutosave)

	return func(ctx context.Context) error {
		if !deps.Session.Dirty() {
			log.DebugContext(ctx, "Session unchanged, skipping save")
			return nil
		}

		startTime := time.Now()
		if err := deps.Session.Flush(ctx, deps.Store); err != nil {
			log.ErrorContext(ctx, "Autosave failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("autosave failed: %w", err)
		}

		log.InfoContext(ctx, "Autosave completed", "duration", time.Since(startTime))
		return nil
	}
}

// newFlowSweepTask drops admin flows that timed out.
func newFlowSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskFlowSweep)

	return func(ctx context.Context) error {
		if n := deps.Flows.Sweep(); n > 0 {
			log.InfoContext(ctx, "Expired admin flows removed", "count", n)
		}
		return nil
	}
}
