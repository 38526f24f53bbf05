package store

import (
	"context"
	"path/filepath"
	"rabbit-bot/models"
	"strings"
	"sync"
)

// Backend holds the durable reminder list. Replace must be all-or-nothing:
// a Load after a failed Replace sees the previous list.
type Backend interface {
	Load(ctx context.Context) ([]models.Reminder, error)
	Replace(ctx context.Context, reminders []models.Reminder) error
	Close() error
}

// UpdateFunc receives a snapshot of the list and returns the new list and
// whether anything changed.
type UpdateFunc func(reminders []models.Reminder) ([]models.Reminder, bool, error)

// Store serializes every read-modify-write against a Backend.
type Store struct {
	backend Backend
	mu      sync.Mutex
}

func New(b Backend) *Store {
	return &Store{backend: b}
}

// Open picks a backend from the path: .db and .sqlite files use SQLite,
// everything else is a JSON file.
func Open(path string) (*Store, error) {
	var (
		b   Backend
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		b, err = NewSQLite(path)
	default:
		b, err = NewFile(path)
	}
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

func (s *Store) Load(ctx context.Context) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Load(ctx)
}

func (s *Store) Replace(ctx context.Context, reminders []models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Replace(ctx, reminders)
}

// Update loads the list, applies fn and writes the result back only when fn
// reports a change. No other Store call runs in between.
func (s *Store) Update(ctx context.Context, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	updated, changed, err := fn(reminders)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.backend.Replace(ctx, updated)
}

func (s *Store) Close() error {
	return s.backend.Close()
}
