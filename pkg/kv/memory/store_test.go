package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prakhar1989/blag/pkg/kv"
)

func TestStore_SetGet(t *testing.T) {
	s := New(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := New(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("value")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}

func TestStore_TTLExpiry(t *testing.T) {
	s := New(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStore_SetClearsOldTTL(t *testing.T) {
	s := New(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v1"), 10*time.Millisecond))
	require.NoError(t, s.Set(ctx, "k", []byte("v2")))

	time.Sleep(25 * time.Millisecond)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestStore_DelExists(t *testing.T) {
	s := New(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))

	count, err := s.Exists(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	deleted, err := s.Del(ctx, "a", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err = s.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_Janitor(t *testing.T) {
	s := New(5 * time.Millisecond)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	assert.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		_, exists := s.values["k"]
		return !exists
	}, time.Second, 10*time.Millisecond)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New(0)
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Set(ctx, "shared", []byte("v"))
				_, _ = s.Get(ctx, "shared")
				_, _ = s.Del(ctx, "shared")
			}
		}()
	}
	wg.Wait()
}

func TestStore_CloseIdempotent(t *testing.T) {
	s := New(time.Minute)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
