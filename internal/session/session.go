// Package session holds the bot's live in-memory state: known users and
// groups, per-user unfiltered mode and the active AI provider.
//
// All methods are safe for concurrent use.
package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/darkjarvis/darkjarvis/internal/store"
)

// ErrUnknownProvider is returned when selecting a provider that is not registered.
var ErrUnknownProvider = errors.New("unknown AI provider")

// minWordRunes is the exclusive lower bound on tracked word length.
const minWordRunes = 3

// Options configures a State.
type Options struct {
	// DefaultProvider is the initially selected provider.
	DefaultProvider string
	// Providers lists every selectable provider name.
	Providers []string
	// MaxWordsPerUser caps each user's word table. Zero means unbounded.
	MaxWordsPerUser int
	Logger          *slog.Logger
}

// State is the process-wide session state.
type State struct {
	mu         sync.Mutex
	users      map[int64]*store.UserRecord
	groups     map[int64]*store.GroupRecord
	unfiltered map[int64]struct{}
	provider   string
	providers  []string
	maxWords   int

	// version increments on every persisted mutation; saved is the version
	// last written to the store.
	version uint64
	saved   uint64

	logger *slog.Logger
}

// New creates an empty State.
func New(opts Options) *State {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &State{
		users:      make(map[int64]*store.UserRecord),
		groups:     make(map[int64]*store.GroupRecord),
		unfiltered: make(map[int64]struct{}),
		provider:   opts.DefaultProvider,
		providers:  slices.Clone(opts.Providers),
		maxWords:   opts.MaxWordsPerUser,
		logger:     logger.With("component", "session"),
	}
}

// GetOrCreateUser returns the record for id, creating an empty one on first
// sight. An existing record is returned unchanged. The returned pointer is
// shared and must be treated as read-only.
func (s *State) GetOrCreateUser(id int64, name string) *store.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userLocked(id, name)
}

func (s *State) userLocked(id int64, name string) *store.UserRecord {
	if u, ok := s.users[id]; ok {
		return u
	}
	u := &store.UserRecord{ID: id, Name: name, Words: make(map[string]int)}
	s.users[id] = u
	s.version++
	return u
}

// RecordMessage counts one inbound text message from the user and updates
// their word frequencies with every whitespace-separated, lowercased token
// longer than three characters.
func (s *State) RecordMessage(id int64, name, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userLocked(id, name)
	u.MessageCount++
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if utf8.RuneCountInString(w) <= minWordRunes {
			continue
		}
		s.addWordLocked(u, w)
	}
	s.version++
}

func (s *State) addWordLocked(u *store.UserRecord, w string) {
	if u.Words == nil {
		u.Words = make(map[string]int)
	}
	if _, ok := u.Words[w]; !ok && s.maxWords > 0 && len(u.Words) >= s.maxWords {
		delete(u.Words, evictionCandidate(u.Words))
	}
	u.Words[w]++
}

// trimWordsLocked evicts words until the table fits the cap.
func (s *State) trimWordsLocked(u *store.UserRecord) {
	for s.maxWords > 0 && len(u.Words) > s.maxWords {
		delete(u.Words, evictionCandidate(u.Words))
	}
}

// evictionCandidate picks the least frequent word, preferring the
// lexicographically greatest among equals.
func evictionCandidate(words map[string]int) string {
	var victim string
	victimCount := -1
	for w, c := range words {
		if victimCount == -1 || c < victimCount || (c == victimCount && w > victim) {
			victim, victimCount = w, c
		}
	}
	return victim
}

// SetMode sets the user's unfiltered flag. Setting the current value is a no-op.
func (s *State) SetMode(id int64, unfiltered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unfiltered {
		s.unfiltered[id] = struct{}{}
	} else {
		delete(s.unfiltered, id)
	}
}

// IsUnfiltered reports whether the user has unfiltered mode on.
func (s *State) IsUnfiltered(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.unfiltered[id]
	return ok
}

// ToggleMode flips the user's unfiltered flag and returns the new value.
func (s *State) ToggleMode(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.unfiltered[id]; ok {
		delete(s.unfiltered, id)
		return false
	}
	s.unfiltered[id] = struct{}{}
	return true
}

// SelectProvider switches the active AI provider. Unknown names leave the
// selection unchanged.
func (s *State) SelectProvider(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.providers, name) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if s.provider != name {
		s.logger.Info("AI provider selected", "from", s.provider, "to", name)
	}
	s.provider = name
	return nil
}

// Provider returns the active AI provider name.
func (s *State) Provider() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// Providers returns every selectable provider name.
func (s *State) Providers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.providers)
}

// RecordGroup stores the group or updates its title. It reports whether
// anything changed.
func (s *State) RecordGroup(id int64, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.groups[id]; ok && g.Title == title {
		return false
	}
	s.groups[id] = &store.GroupRecord{ID: id, Title: title}
	s.version++
	return true
}

// Users returns copies of all users ordered by id.
func (s *State) Users() []*store.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.UserRecord, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	slices.SortFunc(out, func(a, b *store.UserRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Groups returns copies of all groups ordered by id.
func (s *State) Groups() []store.GroupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.GroupRecord, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b store.GroupRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Group looks up one group by id.
func (s *State) Group(id int64) (store.GroupRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return store.GroupRecord{}, false
	}
	return *g, true
}

// Snapshot returns a deep copy of the persistent part of the state.
func (s *State) Snapshot() *store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() *store.Snapshot {
	snap := store.NewSnapshot()
	for id, u := range s.users {
		snap.Users[id] = u.Clone()
	}
	for id, g := range s.groups {
		c := *g
		snap.Groups[id] = &c
	}
	return snap
}

// Dirty reports whether there are changes not yet flushed.
func (s *State) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != s.saved
}

// Restore replaces users and groups with the store's contents.
func (s *State) Restore(ctx context.Context, st store.Store) error {
	snap, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	users := snap.Users
	if users == nil {
		users = make(map[int64]*store.UserRecord)
	}
	groups := snap.Groups
	if groups == nil {
		groups = make(map[int64]*store.GroupRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range users {
		if u == nil {
			delete(users, id)
			continue
		}
		if u.Words == nil {
			u.Words = make(map[string]int)
		}
		s.trimWordsLocked(u)
	}
	s.users = users
	s.groups = groups
	s.saved = s.version
	s.logger.Info("Session restored", "users", len(s.users), "groups", len(s.groups))
	return nil
}

// Flush writes the state to the store when it has changed since the last
// successful flush. Mutations that race with the write keep the state dirty.
func (s *State) Flush(ctx context.Context, st store.Store) error {
	s.mu.Lock()
	if s.version == s.saved {
		s.mu.Unlock()
		return nil
	}
	snap := s.snapshotLocked()
	version := s.version
	s.mu.Unlock()

	if err := st.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to flush session: %w", err)
	}

	s.mu.Lock()
	if version > s.saved {
		s.saved = version
	}
	s.mu.Unlock()
	s.logger.Debug("Session flushed", "users", len(snap.Users), "groups", len(snap.Groups))
	return nil
}
