// Package flow implements the multi-step admin conversations (group message
// and broadcast) as explicit state machines, one active flow per admin.
package flow

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrInvalidTransition is returned for an event the current state does not accept.
	ErrInvalidTransition = errors.New("invalid flow transition")
	// ErrNoFlow is returned when the user has no active flow.
	ErrNoFlow = errors.New("no active flow")
	// ErrExpired is returned when the user's flow idled out. The flow is dropped.
	ErrExpired = errors.New("flow expired")
)

// State is a step of a flow.
type State string

// States.
const (
	StateIdle            State = "idle"
	StateAwaitingGroup   State = "awaiting_group"
	StateAwaitingText    State = "awaiting_text"
	StateAwaitingConfirm State = "awaiting_confirm"
)

// Event drives a transition.
type Event string

// Events.
const (
	EventStart       Event = "start"
	EventGroupChosen Event = "group_chosen"
	EventText        Event = "text"
	EventConfirm     Event = "confirm"
	EventCancel      Event = "cancel"
)

// Kind identifies the flow's purpose.
type Kind string

// Kinds.
const (
	KindGroupMessage Kind = "group_message"
	KindBroadcast    Kind = "broadcast"
)

type transitionTable map[State]map[Event]State

var transitions = map[Kind]transitionTable{
	KindGroupMessage: {
		StateIdle:            {EventStart: StateAwaitingGroup},
		StateAwaitingGroup:   {EventGroupChosen: StateAwaitingText, EventCancel: StateIdle},
		StateAwaitingText:    {EventText: StateAwaitingConfirm, EventCancel: StateIdle},
		StateAwaitingConfirm: {EventConfirm: StateIdle, EventCancel: StateIdle},
	},
	KindBroadcast: {
		StateIdle:            {EventStart: StateAwaitingText},
		StateAwaitingText:    {EventText: StateAwaitingConfirm, EventCancel: StateIdle},
		StateAwaitingConfirm: {EventConfirm: StateIdle, EventCancel: StateIdle},
	},
}

// Next returns the state reached from s on e for the given kind.
func Next(kind Kind, s State, e Event) (State, error) {
	table, ok := transitions[kind]
	if !ok {
		return s, fmt.Errorf("%w: unknown flow kind %q", ErrInvalidTransition, kind)
	}
	next, ok := table[s][e]
	if !ok {
		return s, fmt.Errorf("%w: %s cannot handle %q in state %s", ErrInvalidTransition, kind, e, s)
	}
	return next, nil
}

// Flow is one admin's in-progress conversation.
type Flow struct {
	Kind       Kind
	State      State
	GroupID    int64
	GroupTitle string
	Text       string
	UpdatedAt  time.Time
}

// Manager tracks active flows per user.
type Manager struct {
	mu      sync.Mutex
	flows   map[int64]*Flow
	timeout time.Duration
	now     func() time.Time
}

// NewManager creates a manager dropping flows idle longer than timeout.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		flows:   make(map[int64]*Flow),
		timeout: timeout,
		now:     time.Now,
	}
}

// Start begins a new flow for userID, discarding any previous one.
func (m *Manager) Start(userID int64, kind Kind) (Flow, error) {
	next, err := Next(kind, StateIdle, EventStart)
	if err != nil {
		return Flow{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	f := &Flow{Kind: kind, State: next, UpdatedAt: m.now()}
	m.flows[userID] = f
	return *f, nil
}

// Active returns the user's flow.
func (m *Manager) Active(userID int64) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.activeLocked(userID)
	if err != nil {
		return Flow{}, err
	}
	return *f, nil
}

// AwaitingText reports whether the user's next message belongs to a flow.
// An expired flow still reports true so the caller can tell the admin about
// the expiry instead of treating the text as chat.
func (m *Manager) AwaitingText(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[userID]
	return ok && f.State == StateAwaitingText
}

func (m *Manager) activeLocked(userID int64) (*Flow, error) {
	f, ok := m.flows[userID]
	if !ok {
		return nil, ErrNoFlow
	}
	if m.timeout > 0 && m.now().Sub(f.UpdatedAt) > m.timeout {
		delete(m.flows, userID)
		return nil, ErrExpired
	}
	return f, nil
}

func (m *Manager) fire(userID int64, e Event, apply func(*Flow)) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.activeLocked(userID)
	if err != nil {
		return Flow{}, err
	}
	next, err := Next(f.Kind, f.State, e)
	if err != nil {
		return *f, err
	}
	if apply != nil {
		apply(f)
	}
	f.State = next
	f.UpdatedAt = m.now()

	out := *f
	if next == StateIdle {
		delete(m.flows, userID)
	}
	return out, nil
}

// ChooseGroup records the target group.
func (m *Manager) ChooseGroup(userID, groupID int64, title string) (Flow, error) {
	return m.fire(userID, EventGroupChosen, func(f *Flow) {
		f.GroupID = groupID
		f.GroupTitle = title
	})
}

// SubmitText records the message text.
func (m *Manager) SubmitText(userID int64, text string) (Flow, error) {
	return m.fire(userID, EventText, func(f *Flow) {
		f.Text = text
	})
}

// Confirm completes the flow and returns it for execution. The flow is
// removed before the caller acts on it.
func (m *Manager) Confirm(userID int64) (Flow, error) {
	return m.fire(userID, EventConfirm, nil)
}

// Cancel discards the user's flow. It reports whether a flow was active.
func (m *Manager) Cancel(userID int64) bool {
	_, err := m.fire(userID, EventCancel, func(f *Flow) {
		f.GroupID, f.GroupTitle, f.Text = 0, "", ""
	})
	return err == nil
}

// Sweep drops every expired flow and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeout <= 0 {
		return 0
	}
	removed := 0
	now := m.now()
	for id, f := range m.flows {
		if now.Sub(f.UpdatedAt) > m.timeout {
			delete(m.flows, id)
			removed++
		}
	}
	return removed
}
