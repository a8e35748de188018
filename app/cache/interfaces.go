package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"
)

// Entry is a cached feed body together with the time it was fetched.
type Entry struct {
	Data      []byte    `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store holds raw feed bodies for a bounded freshness window.
// Get reports a miss with ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// FeedKey generates a consistent cache key for a feed URL
func FeedKey(feedURL string) string {
	hash := sha256.Sum256([]byte(feedURL))
	return fmt.Sprintf("feed:%x", hash[:8])
}
