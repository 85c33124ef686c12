package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStreamStagesAndPromotes(t *testing.T) {
	base := t.TempDir()
	store, err := NewMediaStore(base, "")
	require.NoError(t, err)

	tempName, err := store.SaveStream("note.ogg", strings.NewReader("recorded audio"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "tmp", tempName))
	require.NoError(t, err)

	key, err := store.Promote(tempName, "STU123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "uploads/STU123/"))

	file, err := store.Open(key)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "recorded audio", string(data))

	_, err = os.Stat(filepath.Join(base, "tmp", tempName))
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupTempReapsStaleUploads(t *testing.T) {
	base := t.TempDir()
	store, err := NewMediaStore(base, "")
	require.NoError(t, err)

	stale, err := store.SaveStream("abandoned.ogg", strings.NewReader("partial"))
	require.NoError(t, err)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(base, "tmp", stale), old, old))

	_, err = store.SaveStream("fresh.ogg", strings.NewReader("live"))
	require.NoError(t, err)

	removed, err := store.CleanupTemp(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	entries, err := os.ReadDir(filepath.Join(base, "tmp"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
