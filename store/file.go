package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"rabbit-bot/models"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog/log"
)

// FileBackend keeps the reminder list as a JSON document and rewrites the
// whole file on every change.
type FileBackend struct {
	path string
}

// NewFile opens the store at path, creating an empty list if the file does
// not exist yet.
func NewFile(path string) (*FileBackend, error) {
	b := &FileBackend{path: path}

	_, err := os.Stat(path)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
		}
	}
	if err := b.Replace(context.Background(), nil); err != nil {
		return nil, err
	}
	log.Info().Str("component", "store").Str("path", path).Msg("created empty reminder store")
	return b, nil
}

func (b *FileBackend) Load(ctx context.Context) ([]models.Reminder, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return DecodeList(data)
}

func (b *FileBackend) Replace(ctx context.Context, reminders []models.Reminder) error {
	data, err := EncodeList(reminders)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(b.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}
