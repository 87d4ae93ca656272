package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pool identifies an independent admission quota bucket.
type Pool string

const (
	// PoolGeneral is the quota applied to every gated path outside the chat prefix.
	PoolGeneral Pool = "general"
	// PoolChat is the stricter quota applied to the chat feature's path prefix.
	PoolChat Pool = "chat"
)

// Config holds the effective throttle configuration.
type Config struct {
	Window          time.Duration // fixed window length
	MaxRequests     int           // general pool ceiling per window
	MaxRequestsChat int           // chat pool ceiling per window
	SweepInterval   time.Duration // how often expired entries are garbage collected
}

// Entry is the counter state for one key. Count only ever increases within a
// window; when the window expires the entry is replaced wholesale.
type Entry struct {
	Count           int
	WindowStartedAt time.Time
	WindowResetAt   time.Time
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed   bool
	Pool      Pool
	Key       string
	Count     int           // counter value after this request's increment
	Limit     int           // ceiling for the pool
	Remaining int           // requests left in the window, never negative
	ResetAt   time.Time     // when the current window ends
	Window    time.Duration // window length for the pool
}

// RetryAfter is how long the caller should wait before the window resets.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Store tracks fixed-window counters per key, shared by all concurrent
// requests in the process. Counters are local to one instance: in a
// horizontally-scaled deployment ceilings are enforced per instance, which is
// deliberate and must not be replaced with a shared store.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	cfg     Config
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects the time source. Tests use this to drive window expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an admission store with the given configuration.
func NewStore(cfg Config, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*Entry),
		cfg:     cfg,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Store) Config() Config { return s.cfg }

func (s *Store) limitFor(pool Pool) int {
	if pool == PoolChat {
		return s.cfg.MaxRequestsChat
	}
	return s.cfg.MaxRequests
}

// Check counts one admission attempt for the subject against the pool and
// reports whether it is allowed. The window-expiry check and the increment
// run under one lock acquisition, so concurrent requests against the same key
// cannot race past the ceiling. A counted request that never completes still
// consumes quota: admission is counted, not completion.
func (s *Store) Check(pool Pool, subject string) Result {
	key := string(pool) + ":" + subject
	limit := s.limitFor(pool)

	s.mu.Lock()
	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.WindowResetAt) {
		e = &Entry{
			WindowStartedAt: now,
			WindowResetAt:   now.Add(s.cfg.Window),
		}
		s.entries[key] = e
	}
	e.Count++
	count := e.Count
	resetAt := e.WindowResetAt
	s.mu.Unlock()

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= limit,
		Pool:      pool,
		Key:       key,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
		Window:    s.cfg.Window,
	}
}

// Sweep removes every entry whose window has already expired. Entries are
// never partially constructed, so a snapshot-then-delete under the lock is
// safe against concurrent checks.
func (s *Store) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.WindowResetAt) {
			delete(s.entries, k)
		}
	}
}

// StartSweeper runs the periodic garbage collection sweep until ctx is
// cancelled. Run it in its own goroutine; it is owned by the store's
// lifecycle, started on init and stopped on shutdown.
func (s *Store) StartSweeper(ctx context.Context) {
	if s.cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
