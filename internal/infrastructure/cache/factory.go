package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AlertRetryQueueKey is the Redis list holding failed alert scans
const AlertRetryQueueKey = "ledger:alert-scan:retry"

// Lease is a single-holder lock with expiry
type Lease interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// RetryQueue holds payloads for a later attempt
type RetryQueue interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
	DeadLetter(ctx context.Context, payload []byte) error
	Len(ctx context.Context) (queued, dead int64, err error)
}

// Coordination bundles the lease and retry queue the alert engine runs on
type Coordination struct {
	Lease   Lease
	Retries RetryQueue
	// Distributed is false when the in-memory fallback is in use
	Distributed bool

	closers []func() error
}

// Close releases the Redis client or the in-memory sweep
func (c *Coordination) Close() error {
	var first error
	for _, fn := range c.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Factory creates coordination backends based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory backends. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRedisClient connects and pings Redis
func (f *Factory) NewRedisClient(ctx context.Context) (*redis.Client, error) {
	if f.redisConfig.Host == "" {
		return nil, fmt.Errorf("redis host is not configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CreateCoordination returns Redis-backed lease and queue, falling back to
// in-memory ones when Redis is unavailable and fallback is allowed
func (f *Factory) CreateCoordination(ctx context.Context) (*Coordination, error) {
	client, err := f.NewRedisClient(ctx)
	if err == nil {
		f.logger.Info("Using Redis for alert scan coordination", zap.String("addr", f.redisConfig.Addr()))
		return &Coordination{
			Lease:       NewRedisLease(client, ""),
			Retries:     NewRedisRetryQueue(client, AlertRetryQueueKey),
			Distributed: true,
			closers:     []func() error{client.Close},
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for alert scan coordination but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory alert scan coordination. "+
		"Scans are not single-flight across instances and queued retries are lost on restart.",
		zap.Error(err),
	)
	return NewInMemoryCoordination(), nil
}

// NewInMemoryCoordination returns process-local backends
func NewInMemoryCoordination() *Coordination {
	lease := NewInMemoryLease()
	return &Coordination{
		Lease:   lease,
		Retries: NewInMemoryRetryQueue(),
		closers: []func() error{lease.Close},
	}
}
