package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPosts_CreateAndGet(t *testing.T) {
	s := NewMemoryPosts()
	ctx := context.Background()

	post, err := s.Create(ctx, "Hello", "World", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, "Hello", post.Subject)
	assert.False(t, post.IsDraft)
	assert.Equal(t, post.Created, post.LastModified)

	got, err := s.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, *post, *got)

	_, err = s.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPosts_ListOrderingAndDraftFilter(t *testing.T) {
	s := NewMemoryPosts()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	s.now = func() time.Time { return clock }

	_, err := s.Create(ctx, "first", "a", false)
	require.NoError(t, err)

	clock = base.Add(time.Hour)
	_, err = s.Create(ctx, "draft", "b", true)
	require.NoError(t, err)

	clock = base.Add(2 * time.Hour)
	_, err = s.Create(ctx, "second", "c", false)
	require.NoError(t, err)

	published, err := s.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, "second", published[0].Subject)
	assert.Equal(t, "first", published[1].Subject)

	drafts, err := s.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "draft", drafts[0].Subject)
}

func TestMemoryPosts_ListTiebreakOnEqualCreated(t *testing.T) {
	s := NewMemoryPosts()
	ctx := context.Background()

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	first, err := s.Create(ctx, "one", "a", false)
	require.NoError(t, err)
	second, err := s.Create(ctx, "two", "b", false)
	require.NoError(t, err)

	posts, err := s.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
}

func TestMemoryPosts_UpdateRefreshesLastModified(t *testing.T) {
	s := NewMemoryPosts()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	s.now = func() time.Time { return clock }

	post, err := s.Create(ctx, "Hello", "World", false)
	require.NoError(t, err)

	clock = base.Add(time.Minute)
	updated, err := s.Update(ctx, post.ID, "Hello again", "World", false)
	require.NoError(t, err)

	assert.Equal(t, "Hello again", updated.Subject)
	assert.True(t, updated.Created.Equal(post.Created), "created is immutable")
	assert.True(t, updated.LastModified.After(post.LastModified))

	_, err = s.Update(ctx, 99, "x", "y", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPosts_Delete(t *testing.T) {
	s := NewMemoryPosts()
	ctx := context.Background()

	post, err := s.Create(ctx, "Hello", "World", false)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, post.ID))

	_, err = s.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, post.ID), ErrNotFound)
}

func TestMemoryUsers_RegisterAndLookup(t *testing.T) {
	s := NewMemoryUsers()
	ctx := context.Background()

	user, err := s.Register(ctx, "prakhar", "p@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	byName, err := s.GetByUsername(ctx, "prakhar")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byID, err := s.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "prakhar", byID.Username)

	_, err = s.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUsers_DuplicateUsername(t *testing.T) {
	s := NewMemoryUsers()
	ctx := context.Background()

	_, err := s.Register(ctx, "prakhar", "", "hash")
	require.NoError(t, err)

	_, err = s.Register(ctx, "prakhar", "", "otherhash")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestMemoryUsers_ConcurrentRegistrations(t *testing.T) {
	s := NewMemoryUsers()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Register(ctx, "same-name", "", "hash")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrUsernameTaken)
			rejected++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one registration wins")
	assert.Equal(t, attempts-1, rejected)
}
