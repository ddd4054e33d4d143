package tasks

import (
	"context"
	"fmt"

	"github.com/darkjarvis/darkjarvis/internal/persona"
)

// newGroupPostTask posts a freshly generated message to every known group.
// Each group gets its own completion; a failed completion or send only
// skips that group.
func newGroupPostTask(deps TaskDeps, name string, feature persona.Feature) ScheduledTaskFunc {
	log := deps.Logger.With("task", name)

	return func(ctx context.Context) error {
		groups := deps.Session.Groups()
		if len(groups) == 0 {
			log.InfoContext(ctx, "No known groups, nothing to post")
			return nil
		}

		targets := make([]int64, 0, len(groups))
		for _, g := range groups {
			targets = append(targets, g.ID)
		}

		res := deps.Broadcaster.SendEach(ctx, name, targets, func(ctx context.Context, chatID int64) (string, error) {
			text, err := deps.AI.TryComplete(ctx, deps.Persona.Feature(feature, false))
			if err != nil {
				return "", fmt.Errorf("generate %s for chat %d: %w", name, chatID, err)
			}
			return deps.Persona.Sign(text), nil
		})

		log.InfoContext(ctx, "Group post finished", "run_id", res.RunID, "sent", res.Sent, "failed", res.Failed)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s interrupted: %w", name, err)
		}
		return nil
	}
}
