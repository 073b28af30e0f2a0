package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"

	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

// MemoryCacheRepository keeps snapshots in process memory. Values are stored
// encoded so callers never share mutable state with the cache.
type MemoryCacheRepository struct {
	store *gocache.Cache
}

// NewMemoryCacheRepository constructs an in-process cache.
func NewMemoryCacheRepository(cleanupInterval time.Duration) *MemoryCacheRepository {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	return &MemoryCacheRepository{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get decodes the cached value into dest or returns ErrCacheMiss.
func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	cached, ok := r.store.Get(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	raw, ok := cached.([]byte)
	if !ok {
		r.store.Delete(key)
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// Set stores value under key. A zero ttl keeps the entry until it is deleted.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	r.store.Set(key, payload, ttl)
	return nil
}

// DeleteByPattern removes every key matching the glob pattern.
func (r *MemoryCacheRepository) DeleteByPattern(_ context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid cache pattern %q: %w", pattern, err)
	}
	for key := range r.store.Items() {
		if matched, _ := path.Match(pattern, key); matched {
			r.store.Delete(key)
		}
	}
	return nil
}
