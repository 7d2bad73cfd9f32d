// Package store persists the normalized collections as JSON files with
// a companion timestamp for time-based expiry.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tracking-dashboard/redmine"
	"tracking-dashboard/schedule"
)

var (
	// ErrNotFound means nothing has been persisted under the key yet.
	ErrNotFound = errors.New("no cached data")
	// ErrExpired means cached data exists but is older than the TTL.
	ErrExpired = errors.New("cached data expired")
)

const (
	issuesKey    = "issues"
	schedulesKey = "schedules"
)

// envelope wraps persisted data with its save time.
type envelope struct {
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Store reads and writes JSON state under one directory. Writes to the
// same logical key are serialized through a per-key lock so two racing
// refreshes cannot interleave partial writes.
type Store struct {
	dir string
	ttl time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a store rooted at dir. ttl bounds the age of the issue
// cache; the schedule snapshot is not subject to expiry.
func New(dir string, ttl time.Duration) *Store {
	return &Store{dir: dir, ttl: ttl, locks: make(map[string]*sync.Mutex)}
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) save(key string, v any) error {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	wrapped, err := json.Marshal(envelope{SavedAt: time.Now(), Data: data})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), wrapped, 0644); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// load decodes the key into v. checkTTL enforces the expiry window.
func (s *Store) load(key string, v any, checkTTL bool) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("reading %s: %w", key, err)
	}

	var wrapped envelope
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	if checkTTL && s.ttl > 0 && time.Since(wrapped.SavedAt) > s.ttl {
		return fmt.Errorf("%w: %s saved at %s", ErrExpired, key, wrapped.SavedAt.Format(time.RFC3339))
	}
	if err := json.Unmarshal(wrapped.Data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// SaveIssues persists the issue cache.
func (s *Store) SaveIssues(issues []redmine.Issue) error {
	return s.save(issuesKey, issues)
}

// LoadIssues returns the cached issues, or ErrNotFound/ErrExpired when
// the cache is absent or stale.
func (s *Store) LoadIssues() ([]redmine.Issue, error) {
	var issues []redmine.Issue
	if err := s.load(issuesKey, &issues, true); err != nil {
		return nil, err
	}
	return issues, nil
}

// SavePrograms persists the reconciled schedule snapshot.
func (s *Store) SavePrograms(programs []schedule.Program) error {
	return s.save(schedulesKey, programs)
}

// LoadPrograms returns the schedule snapshot. Snapshots do not expire;
// they are replaced on the next import or reconciliation.
func (s *Store) LoadPrograms() ([]schedule.Program, error) {
	var programs []schedule.Program
	if err := s.load(schedulesKey, &programs, false); err != nil {
		return nil, err
	}
	return programs, nil
}
