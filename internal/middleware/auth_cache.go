package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

const (
	actorCacheTTL      = 5 * time.Minute
	negativeCacheTTL   = 30 * time.Second
	maxCacheEntries    = 10000
	cacheCleanupPeriod = 60 * time.Second
)

// negativeSentinel marks a cached lookup failure.
const negativeSentinel = "\x00negative"

var errCachedNotFound = errors.New("api key not found (cached)")

// ActorCache stores API key lookups by key hash. A hit with the negative
// sentinel means the key was recently rejected.
type ActorCache interface {
	Get(ctx context.Context, keyHash string) (actor string, ok bool, err error)
	Set(ctx context.Context, keyHash, actor string, ttl time.Duration) error
}

// hashKey returns a hex-encoded SHA-256 hash of the API key so raw keys are
// never held in a cache.
func hashKey(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

// CachedActorLookup wraps an ActorLookup with a cache. Revoked keys stay
// usable until their cached entry expires.
type CachedActorLookup struct {
	inner ActorLookup
	cache ActorCache
}

// NewCachedActorLookup creates a caching wrapper around inner.
func NewCachedActorLookup(inner ActorLookup, cache ActorCache) *CachedActorLookup {
	return &CachedActorLookup{inner: inner, cache: cache}
}

// ActorByAPIKey returns a cached actor or delegates to the inner lookup.
// Failed lookups are cached for 30s so repeated bad keys skip the database.
func (c *CachedActorLookup) ActorByAPIKey(ctx context.Context, apiKey string) (string, error) {
	hk := hashKey(apiKey)

	// A failing cache degrades to uncached lookups.
	if actor, ok, err := c.cache.Get(ctx, hk); err == nil && ok {
		if actor == negativeSentinel {
			return "", errCachedNotFound
		}
		return actor, nil
	}

	actor, err := c.inner.ActorByAPIKey(ctx, apiKey)
	if err != nil {
		_ = c.cache.Set(ctx, hk, negativeSentinel, negativeCacheTTL)
		return "", err
	}

	_ = c.cache.Set(ctx, hk, actor, actorCacheTTL)

	return actor, nil
}

type cachedActor struct {
	actor     string
	expiresAt time.Time
}

// MemoryActorCache is a bounded in-process ActorCache.
type MemoryActorCache struct {
	mu    sync.RWMutex
	items map[string]cachedActor
}

// NewMemoryActorCache creates a cache whose eviction goroutine stops when ctx
// is cancelled.
func NewMemoryActorCache(ctx context.Context) *MemoryActorCache {
	m := &MemoryActorCache{items: make(map[string]cachedActor)}
	go m.evictLoop(ctx)
	return m
}

// Get implements ActorCache.
func (m *MemoryActorCache) Get(_ context.Context, keyHash string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.items[keyHash]
	if !ok || !time.Now().Before(entry.expiresAt) {
		return "", false, nil
	}

	return entry.actor, true, nil
}

// Set implements ActorCache.
func (m *MemoryActorCache) Set(_ context.Context, keyHash, actor string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) >= maxCacheEntries {
		m.evictExpired(time.Now())
		for k := range m.items {
			if len(m.items) < maxCacheEntries {
				break
			}
			delete(m.items, k)
		}
	}

	m.items[keyHash] = cachedActor{actor: actor, expiresAt: time.Now().Add(ttl)}

	return nil
}

// evictExpired drops expired entries. Caller must hold m.mu.
func (m *MemoryActorCache) evictExpired(now time.Time) {
	for k, v := range m.items {
		if !now.Before(v.expiresAt) {
			delete(m.items, k)
		}
	}
}

func (m *MemoryActorCache) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(cacheCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.mu.Lock()
			m.evictExpired(now)
			m.mu.Unlock()
		}
	}
}
