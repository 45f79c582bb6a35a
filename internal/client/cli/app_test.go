package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/NikhilKartha5/ai-journal/internal/client/store"
	"github.com/NikhilKartha5/ai-journal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func TestOpenStore_Durable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "journal.db")

	s := openStore(ctx, path, discardLogger())
	defer s.Close()

	assert.IsType(t, &store.SQLiteStore{}, s)
}

func TestOpenStore_DegradesToMemory(t *testing.T) {
	ctx := context.Background()

	// A regular file where the data directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	path := filepath.Join(blocker, "data", "journal.db")

	s := openStore(ctx, path, discardLogger())
	defer s.Close()

	assert.IsType(t, &store.MemoryStore{}, s, "storage failure must degrade, not abort")

	// The degraded session is fully usable.
	require.NoError(t, s.SetSetting(ctx, "probe", "ok"))
	var got string
	ok, err := s.GetSetting(ctx, "probe", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ok", got)
}
