package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// JSONStore keeps users and groups in two JSON files.
type JSONStore struct {
	mu         sync.Mutex // serializes Save
	usersPath  string
	groupsPath string
	logger     *slog.Logger
}

// NewJSONStore creates a store backed by the given files. The files do not
// need to exist yet.
func NewJSONStore(usersPath, groupsPath string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &JSONStore{
		usersPath:  usersPath,
		groupsPath: groupsPath,
		logger:     logger.With("component", "json_store"),
	}
}

// Load reads both files. A missing, empty, unreadable or malformed file
// yields an empty collection.
func (s *JSONStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := NewSnapshot()

	var users map[string]*UserRecord
	if s.readFile(s.usersPath, &users) {
		for key, u := range users {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil || u == nil {
				s.logger.Warn("Skipping malformed user entry", "path", s.usersPath, "key", key)
				continue
			}
			u.ID = id
			if u.Words == nil {
				u.Words = make(map[string]int)
			}
			snap.Users[id] = u
		}
	}

	var groups map[string]*GroupRecord
	if s.readFile(s.groupsPath, &groups) {
		for key, g := range groups {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil || g == nil {
				s.logger.Warn("Skipping malformed group entry", "path", s.groupsPath, "key", key)
				continue
			}
			g.ID = id
			snap.Groups[id] = g
		}
	}

	s.logger.Info("Loaded persisted state", "users", len(snap.Users), "groups", len(snap.Groups))
	return snap, nil
}

// readFile decodes path into v and reports whether v was populated.
func (s *JSONStore) readFile(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("State file not found, starting empty", "path", path)
		} else {
			s.logger.Warn("Failed to read state file, starting empty", "path", path, "error", err)
		}
		return false
	}
	if len(data) == 0 {
		s.logger.Info("State file is empty", "path", path)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("Malformed state file, starting empty", "path", path, "error", err)
		return false
	}
	return true
}

// Save overwrites both files. A failure writing one file does not prevent
// the other from being written; all failures are returned joined.
func (s *JSONStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[string]*UserRecord, len(snap.Users))
	for id, u := range snap.Users {
		users[strconv.FormatInt(id, 10)] = u
	}
	groups := make(map[string]*GroupRecord, len(snap.Groups))
	for id, g := range snap.Groups {
		groups[strconv.FormatInt(id, 10)] = g
	}

	var errs []error
	if err := s.writeFile(s.usersPath, users); err != nil {
		s.logger.Error("Failed to save users", "path", s.usersPath, "error", err)
		errs = append(errs, err)
	} else {
		s.logger.Debug("Saved users", "path", s.usersPath, "count", len(users))
	}
	if err := s.writeFile(s.groupsPath, groups); err != nil {
		s.logger.Error("Failed to save groups", "path", s.groupsPath, "error", err)
		errs = append(errs, err)
	} else {
		s.logger.Debug("Saved groups", "path", s.groupsPath, "count", len(groups))
	}
	return errors.Join(errs...)
}

func (s *JSONStore) writeFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Close is a no-op for file storage.
func (s *JSONStore) Close() error { return nil }
