package tasks

import (
	"context"

	"github.com/darkjarvis/darkjarvis/internal/persona"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context is
// cancelled when the scheduler shuts down.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names, matching the keys under scheduler.tasks in the configuration.
const (
	TaskMorningGreeting = "morning_greeting"
	TaskRantOfTheDay    = "rant_of_the_day"
	TaskAutosave        = "autosave"
	TaskFlowSweep       = "flow_sweep"
)

// RegisterAllTasks returns every task keyed by its configuration name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		TaskMorningGreeting: newGroupPostTask(deps, TaskMorningGreeting, persona.FeatureMorningGreeting),
		TaskRantOfTheDay:    newGroupPostTask(deps, TaskRantOfTheDay, persona.FeatureRant),
		TaskAutosave:        newAutosaveTask(deps),
		TaskFlowSweep:       newFlowSweepTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
