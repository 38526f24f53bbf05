package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rabbit-bot/models"
	"rabbit-bot/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_CreatesEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reminders.json")

	b, err := store.NewFile(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	got, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileBackend_ReplaceAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	b, err := store.NewFile(path)
	require.NoError(t, err)

	want := sampleReminders()
	require.NoError(t, b.Replace(context.Background(), want))

	got, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A second backend over the same file sees the same list.
	again, err := store.NewFile(path)
	require.NoError(t, err)
	got, err = again.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileBackend_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	b, err := store.NewFile(filepath.Join(dir, "reminders.json"))
	require.NoError(t, err)

	require.NoError(t, b.Replace(context.Background(), sampleReminders()))
	require.NoError(t, b.Replace(context.Background(), sampleReminders()[:1]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "reminders.json", entries[0].Name())
}

func TestFileBackend_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	b, err := store.NewFile(path)
	require.NoError(t, err)

	_, err = b.Load(context.Background())
	assert.ErrorIs(t, err, models.ErrCorruptStore)
}

func TestFileBackend_MissingFileAfterBootstrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	b, err := store.NewFile(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = b.Load(context.Background())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
