package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
)

// SequenceSource hands out a strictly increasing sequence per partition key.
type SequenceSource interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type MemorySequence struct {
	mu   sync.Mutex
	last map[string]int64
}

func NewMemorySequence() *MemorySequence {
	return &MemorySequence{last: map[string]int64{}}
}

func (m *MemorySequence) NextSequence(_ context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[partitionKey]++
	return m.last[partitionKey], nil
}

type RedisSequence struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisSequence(rdb redis.Cmdable, prefix string) *RedisSequence {
	if prefix == "" {
		prefix = "storefront:seq:"
	}
	return &RedisSequence{rdb: rdb, prefix: prefix}
}

func (r *RedisSequence) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}
	seq, err := r.rdb.Incr(ctx, r.prefix+partitionKey).Result()
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// RowQuerier is satisfied by *pgxpool.Pool.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresSequence struct {
	db RowQuerier
}

func NewPostgresSequence(db RowQuerier) *PostgresSequence {
	return &PostgresSequence{db: db}
}

// NextSequence atomically increments and returns the next sequence for a partition.
func (p *PostgresSequence) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}
	var seq int64
	err := p.db.QueryRow(ctx, `
		INSERT INTO event_sequence (partition_key, last_sequence)
		VALUES ($1, 1)
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequence.last_sequence + 1, updated_at = now()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
