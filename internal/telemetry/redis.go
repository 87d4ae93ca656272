package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// decisionStream is the Redis stream decisions are appended to.
	decisionStream = "gateway:admission-decisions"
	// decisionStreamMaxLen caps the stream so an unattended instance cannot
	// grow it without bound.
	decisionStreamMaxLen = 10000
)

// RedisSink appends admission decisions to a capped Redis stream.
type RedisSink struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(redisURL string, log *zap.Logger) (*RedisSink, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSink{client: client, log: log}, nil
}

// Emit appends a decision to the stream. Failures are logged and swallowed.
func (s *RedisSink) Emit(ctx context.Context, d Decision) {
	ctx, cancel := context.WithTimeout(ctx, emitTimeout)
	defer cancel()

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: decisionStream,
		MaxLen: decisionStreamMaxLen,
		Approx: true,
		Values: map[string]any{
			"key":     d.Key,
			"subject": d.Subject,
			"pool":    d.Pool,
			"path":    d.Path,
			"count":   strconv.Itoa(d.Count),
			"limit":   strconv.Itoa(d.Limit),
			"allowed": strconv.FormatBool(d.Allowed),
			"at":      d.At.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		s.log.Warn("failed_to_emit_admission_decision",
			zap.String("sink", "redis"),
			zap.Error(err),
		)
	}
}

// Ping checks if Redis is reachable. Used by the extended health check.
func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
