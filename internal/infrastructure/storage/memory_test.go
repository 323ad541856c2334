package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/taabalselect/storefront/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()

	exerciseStore(t, store)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_TTL(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := NewMemoryStore(5 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", []byte("v")))
	_, err := store.Get(ctx, "short")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = store.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	store.purge(time.Now())
	assert.Equal(t, 0, store.Size())

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close is idempotent")
}

func TestCleanupInterval(t *testing.T) {
	assert.Equal(t, time.Second, cleanupInterval(time.Millisecond))
	assert.Equal(t, 30*time.Second, cleanupInterval(30*time.Second))
	assert.Equal(t, 10*time.Minute, cleanupInterval(24*time.Hour))
}
