package bot

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkjarvis/darkjarvis/internal/bot/tasks"
	"github.com/darkjarvis/darkjarvis/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJobDefinition(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.TaskConfig
		schedule string
		wantErr  bool
	}{
		{name: "daily", cfg: config.TaskConfig{At: "08:00"}, schedule: "daily at 08:00"},
		{name: "at wins over interval", cfg: config.TaskConfig{At: "21:00", Interval: time.Minute}, schedule: "daily at 21:00"},
		{name: "interval", cfg: config.TaskConfig{Interval: 5 * time.Minute}, schedule: "every 5m0s"},
		{name: "bad clock", cfg: config.TaskConfig{At: "8 o'clock"}, wantErr: true},
		{name: "nothing", cfg: config.TaskConfig{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, schedule, err := jobDefinition(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, def)
			assert.Equal(t, tt.schedule, schedule)
		})
	}
}

func TestSchedulerRunsEnabledTasks(t *testing.T) {
	var ran, disabled atomic.Int32
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"tick": func(context.Context) error {
			ran.Add(1)
			return nil
		},
		"off": func(context.Context) error {
			disabled.Add(1)
			return nil
		},
	}
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"tick":    {Enabled: true, Interval: 20 * time.Millisecond},
		"off":     {Enabled: false, Interval: 20 * time.Millisecond},
		"missing": {Enabled: true, Interval: 20 * time.Millisecond},
	}}

	s, err := NewScheduler(discardLogger(), cfg, time.UTC, taskMap)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "second start is rejected")

	assert.Len(t, s.scheduler.Jobs(), 1)
	assert.Eventually(t, func() bool { return ran.Load() > 0 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.Zero(t, disabled.Load())
}

func TestSchedulerDailyJobInLocation(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"morning": {Enabled: true, At: "08:00"},
	}}
	s, err := NewScheduler(discardLogger(), cfg, loc, map[string]tasks.ScheduledTaskFunc{
		"morning": func(context.Context) error { return nil },
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	jobs := s.scheduler.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "morning", jobs[0].Name())

	next, err := jobs[0].NextRun()
	require.NoError(t, err)
	next = next.In(loc)
	assert.Equal(t, 8, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

type blockingPoller struct {
	started chan struct{}
}

func (p *blockingPoller) Start(ctx context.Context) {
	close(p.started)
	<-ctx.Done()
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := NewScheduler(discardLogger(), &config.SchedulerConfig{}, time.UTC, nil)
	require.NoError(t, err)

	poller := &blockingPoller{started: make(chan struct{})}
	b := NewBot(discardLogger(), poller, s, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	<-poller.started
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

type returningPoller struct{}

func (returningPoller) Start(context.Context) {}

func TestRunFailsWhenPollerExits(t *testing.T) {
	s, err := NewScheduler(discardLogger(), &config.SchedulerConfig{}, time.UTC, nil)
	require.NoError(t, err)

	err = NewBot(discardLogger(), returningPoller{}, s, nil, "").Run(context.Background())
	assert.ErrorContains(t, err, "stopped unexpectedly")
}
