// Package kv provides a small key-value store abstraction with in-memory
// and Redis-backed implementations.
//
// The blag cache talks to a Store rather than to a concrete client so a
// local map can be swapped for a networked cache without touching the
// caching logic. Values are opaque byte slices; TTLs are optional and
// honored by both backends.
//
// Example usage:
//
//	store := memory.New(0)
//	defer store.Close()
//
//	ctx := context.Background()
//	if err := store.Set(ctx, "key", []byte("value")); err != nil {
//		log.Fatal(err)
//	}
//
//	value, err := store.Get(ctx, "key")
//	if errors.Is(err, kv.ErrNotFound) {
//		log.Println("key not found")
//	}
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is not found
var ErrNotFound = errors.New("not found")

// ErrBackendUnavailable is returned when the backend storage is unavailable
var ErrBackendUnavailable = errors.New("backend unavailable")

// Store defines the interface for a key-value store
type Store interface {
	// Set stores value under key, with an optional TTL
	Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Del removes the given keys and reports how many existed
	Del(ctx context.Context, keys ...string) (int64, error)
	// Exists reports how many of the given keys exist
	Exists(ctx context.Context, keys ...string) (int64, error)

	// Ping checks backend health
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
