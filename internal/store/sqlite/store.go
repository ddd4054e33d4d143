package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/darkjarvis/darkjarvis/internal/store"
)

type userRow struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	MessageCount int       `db:"message_count"`
	Words        string    `db:"words"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type groupRow struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Store implements store.Store with sqlx.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// NewStore wraps a connected, migrated database.
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		db:     db,
		logger: logger.With("component", "sqlite_store"),
	}
}

// Load reads every user and group. A user whose word table cannot be
// decoded is loaded with an empty table.
func (s *Store) Load(ctx context.Context) (*store.Snapshot, error) {
	snap := store.NewSnapshot()

	var users []userRow
	if err := s.db.SelectContext(ctx, &users, `SELECT id, name, message_count, words FROM users`); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, row := range users {
		words := make(map[string]int)
		if err := json.Unmarshal([]byte(row.Words), &words); err != nil {
			s.logger.Warn("Malformed word table, resetting", "user_id", row.ID, "error", err)
			words = make(map[string]int)
		}
		if words == nil {
			words = make(map[string]int)
		}
		snap.Users[row.ID] = &store.UserRecord{
			ID:           row.ID,
			Name:         row.Name,
			MessageCount: row.MessageCount,
			Words:        words,
		}
	}

	var groups []groupRow
	if err := s.db.SelectContext(ctx, &groups, `SELECT id, title FROM chat_groups`); err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	for _, row := range groups {
		snap.Groups[row.ID] = &store.GroupRecord{ID: row.ID, Title: row.Title}
	}

	s.logger.Info("Loaded persisted state", "users", len(snap.Users), "groups", len(snap.Groups))
	return snap, nil
}

// Save upserts every user and group in a single transaction.
func (s *Store) Save(ctx context.Context, snap *store.Snapshot) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to roll back save", "error", rbErr)
			}
		}
	}()

	now := time.Now().UTC()

	const upsertUser = `
		INSERT INTO users (id, name, message_count, words, updated_at)
		VALUES (:id, :name, :message_count, :words, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			message_count = excluded.message_count,
			words = excluded.words,
			updated_at = excluded.updated_at`
	for id, u := range snap.Users {
		words, mErr := json.Marshal(u.Words)
		if mErr != nil {
			return fmt.Errorf("failed to encode words for user %d: %w", id, mErr)
		}
		row := userRow{ID: id, Name: u.Name, MessageCount: u.MessageCount, Words: string(words), UpdatedAt: now}
		if _, err = tx.NamedExecContext(ctx, upsertUser, row); err != nil {
			return fmt.Errorf("failed to save user %d: %w", id, err)
		}
	}

	const upsertGroup = `
		INSERT INTO chat_groups (id, title, updated_at)
		VALUES (:id, :title, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at`
	for id, g := range snap.Groups {
		row := groupRow{ID: id, Title: g.Title, UpdatedAt: now}
		if _, err = tx.NamedExecContext(ctx, upsertGroup, row); err != nil {
			return fmt.Errorf("failed to save group %d: %w", id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	s.logger.Debug("Saved state", "users", len(snap.Users), "groups", len(snap.Groups))
	return nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
