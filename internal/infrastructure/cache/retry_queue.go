package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DeadLetterPrefix is prepended to a queue name to form its dead-letter list
const DeadLetterPrefix = "dlq:"

// RedisRetryQueue is a FIFO list: LPUSH on one end, RPOP on the other.
// Entries that exhausted their attempts move to the dlq: list.
type RedisRetryQueue struct {
	client redis.UniversalClient
	key    string
}

// NewRedisRetryQueue creates a queue stored under key
func NewRedisRetryQueue(client redis.UniversalClient, key string) *RedisRetryQueue {
	return &RedisRetryQueue{client: client, key: key}
}

// Push appends a payload
func (q *RedisRetryQueue) Push(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", q.key, err)
	}
	return nil
}

// Pop removes the oldest payload, returning nil when the queue is empty
func (q *RedisRetryQueue) Pop(ctx context.Context) ([]byte, error) {
	payload, err := q.client.RPop(ctx, q.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop from %s: %w", q.key, err)
	}
	return payload, nil
}

// DeadLetter parks a payload for manual inspection
func (q *RedisRetryQueue) DeadLetter(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, DeadLetterPrefix+q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to dead-letter to %s: %w", q.key, err)
	}
	return nil
}

// Len returns the number of queued and dead-lettered payloads
func (q *RedisRetryQueue) Len(ctx context.Context) (queued, dead int64, err error) {
	pipe := q.client.Pipeline()
	queuedCmd := pipe.LLen(ctx, q.key)
	deadCmd := pipe.LLen(ctx, DeadLetterPrefix+q.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to read queue length: %w", err)
	}
	return queuedCmd.Val(), deadCmd.Val(), nil
}

// InMemoryRetryQueue is the process-local equivalent of RedisRetryQueue.
// Its contents are lost on restart.
type InMemoryRetryQueue struct {
	mu     sync.Mutex
	queued [][]byte
	dead   [][]byte
}

// NewInMemoryRetryQueue creates an empty queue
func NewInMemoryRetryQueue() *InMemoryRetryQueue {
	return &InMemoryRetryQueue{}
}

// Push appends a copy of payload
func (q *InMemoryRetryQueue) Push(_ context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queued = append(q.queued, append([]byte(nil), payload...))
	return nil
}

// Pop removes the oldest payload, returning nil when the queue is empty
func (q *InMemoryRetryQueue) Pop(_ context.Context) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queued) == 0 {
		return nil, nil
	}
	p := q.queued[0]
	q.queued = q.queued[1:]
	return p, nil
}

// DeadLetter parks a payload
func (q *InMemoryRetryQueue) DeadLetter(_ context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = append(q.dead, append([]byte(nil), payload...))
	return nil
}

// Len returns the number of queued and dead-lettered payloads
func (q *InMemoryRetryQueue) Len(context.Context) (queued, dead int64, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.queued)), int64(len(q.dead)), nil
}
