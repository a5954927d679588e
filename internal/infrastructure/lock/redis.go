package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKey is the Redis key guarding ingestion runs
	DefaultKey = "sales-ingestion:lock"

	defaultTTL           = 30 * time.Second
	defaultRetryInterval = 100 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the expiry forward only while the key still holds our token
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a lock shared between processes through a single Redis key.
// The key expires after ttl so a crashed holder cannot block ingestion forever;
// a live holder extends it every ttl/3 until release.
type Redis struct {
	client        redis.UniversalClient
	key           string
	ttl           time.Duration
	retryInterval time.Duration
	logger        *slog.Logger
}

// NewRedis creates a new Redis-backed lock
func NewRedis(client redis.UniversalClient, key string, ttl time.Duration, logger *slog.Logger) *Redis {
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{
		client:        client,
		key:           key,
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
		logger:        logger.With(slog.String("component", "ingestion_lock")),
	}
}

// Lock polls SET NX until the key is acquired or ctx is done
func (l *Redis) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire redis lock %s: %w", l.key, err)
		}
		if ok {
			l.logger.DebugContext(ctx, "Ingestion lock acquired", slog.String("key", l.key))
			return l.hold(token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// hold starts the keep-alive loop and returns the release func for token
func (l *Redis) hold(token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(token)
		})
	}
}

func (l *Redis) keepAlive(token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := max(l.ttl/3, time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		n, err := extendScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
		cancel()
		if err != nil {
			// transient; the key survives until ttl, so retry on the next tick
			l.logger.Warn("Failed to extend ingestion lock",
				slog.String("key", l.key),
				slog.String("error", err.Error()),
			)
			continue
		}
		if n == 0 {
			l.logger.Error("Ingestion lock lost while held", slog.String("key", l.key))
			return
		}
	}
}

func (l *Redis) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Error("Failed to release ingestion lock",
			slog.String("key", l.key),
			slog.String("error", err.Error()),
		)
		return
	}
	if n == 0 {
		l.logger.Warn("Ingestion lock expired before release", slog.String("key", l.key))
	}
}
