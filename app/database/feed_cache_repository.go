package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/cache"
)

var _ cache.Store = (*FeedCacheRepository)(nil)

// FeedCacheRepository is a cache.Store backed by the feed_cache table, so the
// freshness window survives between one-shot runs.
type FeedCacheRepository struct {
	db  *DB
	now func() time.Time
}

func NewFeedCacheRepository(db *DB) *FeedCacheRepository {
	return &FeedCacheRepository{db: db, now: time.Now}
}

func (r *FeedCacheRepository) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	var data []byte
	var fetchedAt, expiresAt int64

	err := r.db.QueryRowContext(ctx, `
		SELECT data, fetched_at, expires_at
		FROM feed_cache
		WHERE cache_key = ?
	`, key).Scan(&data, &fetchedAt, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("failed to get cached feed: %w", err)
	}

	if r.now().UnixNano() >= expiresAt {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM feed_cache WHERE expires_at <= ?`, r.now().UnixNano()); err != nil {
			return cache.Entry{}, false, fmt.Errorf("failed to purge expired feeds: %w", err)
		}
		return cache.Entry{}, false, nil
	}

	return cache.Entry{
		Data:      data,
		FetchedAt: time.Unix(0, fetchedAt),
	}, true, nil
}

func (r *FeedCacheRepository) Set(ctx context.Context, key string, entry cache.Entry, ttl time.Duration) error {
	expiresAt := r.now().Add(ttl).UnixNano()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feed_cache (cache_key, data, fetched_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			data = excluded.data,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at
	`, key, entry.Data, entry.FetchedAt.UnixNano(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store cached feed: %w", err)
	}

	return nil
}

func (r *FeedCacheRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM feed_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cached feed: %w", err)
	}
	return nil
}

func (r *FeedCacheRepository) Close() error {
	return r.db.Close()
}
