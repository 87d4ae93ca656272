package token

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// DefaultKeySetMaxAge is how long a fetched key set is trusted before a
// refetch is required.
const DefaultKeySetMaxAge = 10 * time.Minute

// missRefetchInterval bounds how often an unknown kid may force a refetch of
// an otherwise fresh key set. Without it, unauthenticated tokens carrying
// random kids would drive one outbound fetch per inbound request.
const missRefetchInterval = 30 * time.Second

// KeySetCache caches the remote JWKS key set, shared across requests within
// the process. A stale or missing entry triggers a refetch; concurrent
// requests share a cache hit without re-fetching.
type KeySetCache struct {
	url    string
	maxAge time.Duration
	client *http.Client
	now    func() time.Time

	mu        sync.RWMutex
	keys      jwk.Set
	fetchedAt time.Time
}

// KeySetOption configures a KeySetCache.
type KeySetOption func(*KeySetCache)

// WithKeySetClock injects the time source. Tests use this to drive staleness
// and the miss-refetch throttle.
func WithKeySetClock(now func() time.Time) KeySetOption {
	return func(c *KeySetCache) { c.now = now }
}

// NewKeySetCache creates a key set cache for the given JWKS URL.
// A maxAge of 0 uses DefaultKeySetMaxAge.
func NewKeySetCache(url string, maxAge time.Duration, opts ...KeySetOption) *KeySetCache {
	if maxAge <= 0 {
		maxAge = DefaultKeySetMaxAge
	}
	c := &KeySetCache{
		url:    url,
		maxAge: maxAge,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the configured key set endpoint.
func (c *KeySetCache) URL() string { return c.url }

// Lookup resolves a signing key by key id, fetching the remote key set on a
// miss or stale entry. A kid miss on a fresh set forces a refetch so a
// freshly rotated key is picked up without waiting out maxAge, but at most
// once per missRefetchInterval: repeated unknown kids fail against the cached
// set instead of hammering the endpoint.
func (c *KeySetCache) Lookup(ctx context.Context, kid string) (jwk.Key, error) {
	c.mu.RLock()
	now := c.now()
	age := now.Sub(c.fetchedAt)
	fresh := c.keys != nil && age < c.maxAge
	if fresh {
		if key, ok := lookupKey(c.keys, kid); ok {
			c.mu.RUnlock()
			return key, nil
		}
		if age < missRefetchInterval {
			c.mu.RUnlock()
			return nil, fmt.Errorf("signing key %q not found in key set", kid)
		}
	}
	c.mu.RUnlock()

	keys, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch key set: %w", err)
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = c.now()
	c.mu.Unlock()

	if key, ok := lookupKey(keys, kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("signing key %q not found in key set", kid)
}

// lookupKey finds a key by id. A token without a kid is accepted only when
// the set contains exactly one key.
func lookupKey(set jwk.Set, kid string) (jwk.Key, bool) {
	if kid == "" {
		if set.Len() == 1 {
			key, ok := set.Key(0)
			return key, ok
		}
		return nil, false
	}
	return set.LookupKeyID(kid)
}

func (c *KeySetCache) fetch(ctx context.Context) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch key set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key set endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read key set response: %w", err)
	}

	keys, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key set: %w", err)
	}

	return keys, nil
}
