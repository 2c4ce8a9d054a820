// Package store persists posts and users. Two backends implement the same
// contracts: PostgreSQL for deployments and an in-memory store for
// development and tests.
package store

import (
	"context"
	"errors"

	"github.com/prakhar1989/blag/internal/blog"
)

// ErrNotFound is returned when a post or user does not exist
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when a registration collides with an
// existing username. Uniqueness is enforced inside the store (unique index
// or locked check-and-insert) so concurrent registrations cannot both
// succeed.
var ErrUsernameTaken = errors.New("username already taken")

// PostStore is the CRUD contract the cache and handlers depend on.
// Listings are ordered newest-created-first.
type PostStore interface {
	Create(ctx context.Context, subject, content string, isDraft bool) (*blog.Post, error)
	GetByID(ctx context.Context, id int64) (*blog.Post, error)
	ListPublished(ctx context.Context) ([]blog.Post, error)
	ListDrafts(ctx context.Context) ([]blog.Post, error)
	Update(ctx context.Context, id int64, subject, content string, isDraft bool) (*blog.Post, error)
	Delete(ctx context.Context, id int64) error
}

// UserStore holds registered authors for the per-user auth variant.
type UserStore interface {
	Register(ctx context.Context, username, email, passwordHash string) (*blog.User, error)
	GetByUsername(ctx context.Context, username string) (*blog.User, error)
	GetByID(ctx context.Context, id int64) (*blog.User, error)
}
