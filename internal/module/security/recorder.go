package security

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventKind classifies a security event.
type EventKind string

const (
	EventFailedAuth   EventKind = "failed_auth"
	EventSuspiciousIP EventKind = "suspicious_ip"
)

// EventRecorder tracks security events in sliding time windows. Counters
// live in an external store with native TTL, so they survive restarts and
// are shared across instances.
type EventRecorder interface {
	// Record adds one event for the subject (an email, an IP) and returns
	// the count inside the current window, including this event.
	Record(ctx context.Context, kind EventKind, subject string) (int64, error)

	// Count returns the subject's event count inside the current window.
	Count(ctx context.Context, kind EventKind, subject string) (int64, error)

	// Clear drops the subject's counter (e.g. after a successful login).
	Clear(ctx context.Context, kind EventKind, subject string) error
}

// RecorderConfig holds window sizes and alert thresholds.
type RecorderConfig struct {
	Window         time.Duration
	AlertThreshold int64
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Window:         15 * time.Minute,
		AlertThreshold: 5,
	}
}

// RedisRecorder implements EventRecorder over a redis sorted set per
// (kind, subject) pair: members are event timestamps, trimmed to the window
// on every touch, with a TTL slightly past the window as a backstop.
type RedisRecorder struct {
	redis  redis.UniversalClient
	cfg    RecorderConfig
	logger *zap.Logger
}

// NewRedisRecorder creates a redis-backed event recorder.
func NewRedisRecorder(client redis.UniversalClient, cfg RecorderConfig, logger *zap.Logger) *RedisRecorder {
	if cfg.Window <= 0 {
		cfg.Window = DefaultRecorderConfig().Window
	}
	if cfg.AlertThreshold <= 0 {
		cfg.AlertThreshold = DefaultRecorderConfig().AlertThreshold
	}
	return &RedisRecorder{redis: client, cfg: cfg, logger: logger}
}

func (r *RedisRecorder) key(kind EventKind, subject string) string {
	return fmt.Sprintf("security:%s:%s", kind, subject)
}

var recordScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local ttl_ms = tonumber(ARGV[3])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	redis.call('ZADD', key, now, now)
	redis.call('PEXPIRE', key, ttl_ms)
	return redis.call('ZCARD', key)
`)

// Record adds one event and returns the in-window count.
func (r *RedisRecorder) Record(ctx context.Context, kind EventKind, subject string) (int64, error) {
	now := time.Now()
	count, err := recordScript.Run(ctx, r.redis, []string{r.key(kind, subject)},
		now.Add(-r.cfg.Window).UnixNano(),
		now.UnixNano(),
		r.cfg.Window.Milliseconds()+60000,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("record security event: %w", err)
	}

	if count >= r.cfg.AlertThreshold {
		r.logger.Warn("security event threshold reached",
			zap.String("kind", string(kind)),
			zap.String("subject", subject),
			zap.Int64("count", count),
			zap.Duration("window", r.cfg.Window),
		)
	}
	return count, nil
}

// Count returns the in-window count without recording anything.
func (r *RedisRecorder) Count(ctx context.Context, kind EventKind, subject string) (int64, error) {
	now := time.Now()
	key := r.key(kind, subject)

	if err := r.redis.ZRemRangeByScore(ctx, key, "-inf",
		fmt.Sprint(now.Add(-r.cfg.Window).UnixNano())).Err(); err != nil {
		return 0, fmt.Errorf("trim security window: %w", err)
	}
	count, err := r.redis.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("count security events: %w", err)
	}
	return count, nil
}

// Clear drops the counter.
func (r *RedisRecorder) Clear(ctx context.Context, kind EventKind, subject string) error {
	return r.redis.Del(ctx, r.key(kind, subject)).Err()
}
