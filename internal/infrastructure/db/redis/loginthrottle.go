package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultMaxFailures = 7
	defaultWindow      = 15 * time.Minute
)

// LoginThrottle counts failed password attempts per username in Redis.
// Key format: throttle:login:<username>, expiring after the window.
//
// The throttle fails open: when Redis is unreachable it allows the attempt
// and logs, so a cache outage degrades to no-throttling rather than locking
// every user out.
type LoginThrottle struct {
	client      *redis.Client
	maxFailures int
	window      time.Duration
	log         zerolog.Logger
}

// NewLoginThrottle creates a throttle allowing maxFailures failed attempts
// per window. Non-positive arguments fall back to defaults.
func NewLoginThrottle(client *redis.Client, maxFailures int, window time.Duration, log zerolog.Logger) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginThrottle{client: client, maxFailures: maxFailures, window: window, log: log}
}

// Allowed reports whether username may attempt a password login.
func (t *LoginThrottle) Allowed(ctx context.Context, username string) bool {
	n, err := t.client.Get(ctx, t.key(username)).Int()
	if err == redis.Nil {
		return true
	}
	if err != nil {
		t.log.Warn().Err(err).Msg("login throttle unavailable, failing open")
		return true
	}
	return n < t.maxFailures
}

// RecordFailure bumps the failure counter and refreshes the window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string) {
	key := t.key(username)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		t.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) {
	if err := t.client.Del(ctx, t.key(username)).Err(); err != nil {
		t.log.Warn().Err(err).Msg("failed to reset login throttle")
	}
}

func (t *LoginThrottle) key(username string) string {
	return fmt.Sprintf("throttle:login:%s", username)
}
