package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Cache is the key-value and pub/sub port used by the order record store.
type Cache interface {
	// Get retrieves a value by key. Missing keys yield ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the specified TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Publish sends a message to every subscriber of channel.
	Publish(ctx context.Context, channel string, message []byte) error

	// Subscribe listens on channel. The subscription is active when it returns.
	Subscribe(ctx context.Context, channel string) (Subscription, error)

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// Subscription delivers published messages until closed.
type Subscription interface {
	// Messages is closed after Close.
	Messages() <-chan []byte
	Close() error
}
