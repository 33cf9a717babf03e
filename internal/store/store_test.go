package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odincal/internal/store"
	"odincal/internal/store/memory"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoad_MissingKeyReturnsDefault(t *testing.T) {
	kv := memory.New()

	got, err := store.Load(context.Background(), kv, "missing", sample{Name: "default"})

	require.NoError(t, err)
	assert.Equal(t, "default", got.Name)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	require.NoError(t, store.Save(ctx, kv, "k", sample{Name: "a", Count: 3}))
	got, err := store.Load(ctx, kv, "k", sample{})

	require.NoError(t, err)
	assert.Equal(t, sample{Name: "a", Count: 3}, got)
}

func TestLoad_CorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Put(ctx, "k", []byte("{not json")))

	got, err := store.Load(ctx, kv, "k", sample{Name: "default"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `decode "k"`)
	assert.Equal(t, "default", got.Name)
}
