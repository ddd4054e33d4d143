// Package store persists users and groups between restarts.
//
// The default backend keeps two flat JSON files keyed by decimal id. An
// SQLite backend lives in the sqlite subpackage.
package store

import (
	"context"
	"maps"
)

// UserRecord is everything remembered about one Telegram user.
type UserRecord struct {
	ID           int64          `json:"-"`
	Name         string         `json:"name"`
	MessageCount int            `json:"message_count"`
	Words        map[string]int `json:"words"`
}

// Clone returns a deep copy of u.
func (u *UserRecord) Clone() *UserRecord {
	c := *u
	c.Words = maps.Clone(u.Words)
	if c.Words == nil {
		c.Words = make(map[string]int)
	}
	return &c
}

// GroupRecord is a group, supergroup or channel the bot has seen.
type GroupRecord struct {
	ID    int64  `json:"-"`
	Title string `json:"title"`
}

// Snapshot is the complete persisted state.
type Snapshot struct {
	Users  map[int64]*UserRecord
	Groups map[int64]*GroupRecord
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:  make(map[int64]*UserRecord),
		Groups: make(map[int64]*GroupRecord),
	}
}

// Store defines the persistence operations used by the session layer.
type Store interface {
	// Load reads the persisted state. Content problems never fail the load;
	// the affected collection comes back empty and a warning is logged.
	Load(ctx context.Context) (*Snapshot, error)

	// Save overwrites the persisted state with snap.
	Save(ctx context.Context, snap *Snapshot) error

	// Close releases any held resources.
	Close() error
}
