package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prakhar1989/blag/internal/blog"
)

// MemoryPosts is a mutex-guarded in-memory PostStore for development and
// tests.
type MemoryPosts struct {
	mu     sync.RWMutex
	posts  map[int64]blog.Post
	nextID int64
	// now is swappable so tests can control timestamps
	now func() time.Time
}

func NewMemoryPosts() *MemoryPosts {
	return &MemoryPosts{
		posts:  make(map[int64]blog.Post),
		nextID: 1,
		now:    time.Now,
	}
}

func (m *MemoryPosts) Create(ctx context.Context, subject, content string, isDraft bool) (*blog.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	post := blog.Post{
		ID:           m.nextID,
		Subject:      subject,
		Content:      content,
		IsDraft:      isDraft,
		Created:      now,
		LastModified: now,
	}
	m.nextID++
	m.posts[post.ID] = post

	return &post, nil
}

func (m *MemoryPosts) GetByID(ctx context.Context, id int64) (*blog.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (m *MemoryPosts) ListPublished(ctx context.Context) ([]blog.Post, error) {
	return m.list(false), nil
}

func (m *MemoryPosts) ListDrafts(ctx context.Context) ([]blog.Post, error) {
	return m.list(true), nil
}

func (m *MemoryPosts) list(drafts bool) []blog.Post {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var posts []blog.Post
	for _, post := range m.posts {
		if post.IsDraft == drafts {
			posts = append(posts, post)
		}
	}

	// Newest created first, id as tiebreak for equal timestamps
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Created.Equal(posts[j].Created) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].Created.After(posts[j].Created)
	})

	return posts
}

func (m *MemoryPosts) Update(ctx context.Context, id int64, subject, content string, isDraft bool) (*blog.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, ErrNotFound
	}

	post.Subject = subject
	post.Content = content
	post.IsDraft = isDraft
	post.LastModified = m.now()
	m.posts[id] = post

	return &post, nil
}

func (m *MemoryPosts) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.posts[id]; !exists {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// MemoryUsers is a mutex-guarded in-memory UserStore. Register checks and
// inserts under one lock, so duplicate usernames cannot race past each
// other.
type MemoryUsers struct {
	mu         sync.RWMutex
	users      map[int64]blog.User
	byUsername map[string]int64
	nextID     int64
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		users:      make(map[int64]blog.User),
		byUsername: make(map[string]int64),
		nextID:     1,
	}
}

func (m *MemoryUsers) Register(ctx context.Context, username, email, passwordHash string) (*blog.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byUsername[username]; taken {
		return nil, ErrUsernameTaken
	}

	user := blog.User{
		ID:           m.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Created:      time.Now(),
	}
	m.nextID++
	m.users[user.ID] = user
	m.byUsername[username] = user.ID

	return &user, nil
}

func (m *MemoryUsers) GetByUsername(ctx context.Context, username string) (*blog.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byUsername[username]
	if !exists {
		return nil, ErrNotFound
	}
	user := m.users[id]
	return &user, nil
}

func (m *MemoryUsers) GetByID(ctx context.Context, id int64) (*blog.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &user, nil
}

var (
	_ PostStore = (*MemoryPosts)(nil)
	_ UserStore = (*MemoryUsers)(nil)
)
