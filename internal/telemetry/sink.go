package telemetry

import (
	"context"
	"time"
)

// Decision is one admission-throttle decision record.
type Decision struct {
	Key     string    `json:"key"`      // composite rate-limit key
	Subject string    `json:"subject"`  // identity id or client address
	Pool    string    `json:"pool"`     // general or chat
	Path    string    `json:"path"`     // sanitized request path
	Count   int       `json:"count"`    // counter value after the increment
	Limit   int       `json:"limit"`    // pool ceiling
	Allowed bool      `json:"allowed"`  // outcome
	At      time.Time `json:"at"`
}

// Sink receives admission decisions. Implementations are best-effort: Emit
// must never block the request path beyond a short internal timeout and must
// swallow (and log) delivery failures rather than surface them to the caller.
type Sink interface {
	Emit(ctx context.Context, d Decision)
	Close() error
}

// emitTimeout bounds how long a sink may spend delivering one decision.
const emitTimeout = 2 * time.Second

// NoopSink discards every decision. Used when no telemetry backend is
// configured.
type NoopSink struct{}

func (NoopSink) Emit(context.Context, Decision) {}

func (NoopSink) Close() error { return nil }

// Pinger is implemented by sinks whose backend reachability can be checked.
// The extended health check uses it when available.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ Sink = NoopSink{}
	_ Sink = (*RedisSink)(nil)
	_ Sink = (*AMQPSink)(nil)
)
