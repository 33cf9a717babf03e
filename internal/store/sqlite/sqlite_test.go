package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetPut(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.Get(ctx, "events")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "events", []byte(`[1]`)))
	require.NoError(t, s.Put(ctx, "events", []byte(`[1,2]`)))

	v, ok, err := s.Get(ctx, "events")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v))
}

func TestReopenKeepsDataAndSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "odincal.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "accounts", []byte(`[]`)))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentVersion, version)

	v, ok, err := s.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(v))
}
