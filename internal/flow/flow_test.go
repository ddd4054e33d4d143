package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind    Kind
		from    State
		event   Event
		want    State
		wantErr bool
	}{
		{KindGroupMessage, StateIdle, EventStart, StateAwaitingGroup, false},
		{KindGroupMessage, StateAwaitingGroup, EventGroupChosen, StateAwaitingText, false},
		{KindGroupMessage, StateAwaitingText, EventText, StateAwaitingConfirm, false},
		{KindGroupMessage, StateAwaitingConfirm, EventConfirm, StateIdle, false},
		{KindGroupMessage, StateAwaitingGroup, EventText, StateAwaitingGroup, true},
		{KindGroupMessage, StateIdle, EventCancel, StateIdle, true},
		{KindBroadcast, StateIdle, EventStart, StateAwaitingText, false},
		{KindBroadcast, StateAwaitingText, EventGroupChosen, StateAwaitingText, true},
		{KindBroadcast, StateAwaitingConfirm, EventCancel, StateIdle, false},
		{Kind("nope"), StateIdle, EventStart, StateIdle, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			t.Parallel()
			got, err := Next(tt.kind, tt.from, tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEveryNonIdleStateCancels(t *testing.T) {
	t.Parallel()
	for kind, table := range transitions {
		for state := range table {
			if state == StateIdle {
				continue
			}
			next, err := Next(kind, state, EventCancel)
			require.NoError(t, err, "%s/%s", kind, state)
			assert.Equal(t, StateIdle, next)
		}
	}
}

func TestGroupMessageFlow(t *testing.T) {
	t.Parallel()
	m := NewManager(10 * time.Minute)

	f, err := m.Start(1, KindGroupMessage)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingGroup, f.State)
	assert.False(t, m.AwaitingText(1))

	_, err = m.SubmitText(1, "too early")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f, err = m.ChooseGroup(1, -100, "Ekip")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingText, f.State)
	assert.True(t, m.AwaitingText(1))

	f, err = m.SubmitText(1, "Toplantı 5'te")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingConfirm, f.State)

	f, err = m.Confirm(1)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, f.State)
	assert.Equal(t, int64(-100), f.GroupID)
	assert.Equal(t, "Toplantı 5'te", f.Text)

	_, err = m.Active(1)
	assert.ErrorIs(t, err, ErrNoFlow)
}

func TestCancelDiscardsInput(t *testing.T) {
	t.Parallel()
	m := NewManager(time.Minute)

	_, err := m.Start(1, KindBroadcast)
	require.NoError(t, err)
	_, err = m.SubmitText(1, "secret draft")
	require.NoError(t, err)

	assert.True(t, m.Cancel(1))
	assert.False(t, m.Cancel(1))

	_, err = m.Confirm(1)
	assert.ErrorIs(t, err, ErrNoFlow)

	// A new flow starts clean.
	f, err := m.Start(1, KindBroadcast)
	require.NoError(t, err)
	assert.Empty(t, f.Text)
}

func TestExpiry(t *testing.T) {
	t.Parallel()
	m := NewManager(10 * time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, err := m.Start(1, KindBroadcast)
	require.NoError(t, err)
	_, err = m.Start(2, KindGroupMessage)
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	_, err = m.SubmitText(1, "still fresh")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, m.Sweep(), "only the untouched flow idles out")

	now = now.Add(11 * time.Minute)
	assert.False(t, m.AwaitingText(1))
	_, err = m.Confirm(1)
	assert.ErrorIs(t, err, ErrExpired)
	_, err = m.Active(1)
	assert.ErrorIs(t, err, ErrNoFlow)
}

func TestFlowsAreIndependentPerUser(t *testing.T) {
	t.Parallel()
	m := NewManager(time.Minute)

	_, err := m.Start(1, KindBroadcast)
	require.NoError(t, err)
	_, err = m.Start(2, KindGroupMessage)
	require.NoError(t, err)

	assert.True(t, m.AwaitingText(1))
	assert.False(t, m.AwaitingText(2))
}
