package events

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySequence(t *testing.T) {
	seq := NewMemorySequence()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := seq.NextSequence(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := seq.NextSequence(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	_, err = seq.NextSequence(ctx, "")
	assert.Error(t, err)
}

func TestRedisSequence(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	seq := NewRedisSequence(rdb, "")
	ctx := context.Background()

	first, err := seq.NextSequence(ctx, "1")
	require.NoError(t, err)
	second, err := seq.NextSequence(ctx, "1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)

	stored, err := mr.Get("storefront:seq:1")
	require.NoError(t, err)
	assert.Equal(t, "2", stored)

	mr.Close()
	_, err = seq.NextSequence(ctx, "1")
	assert.ErrorContains(t, err, "next sequence")
}

func TestPostgresSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	query := regexp.QuoteMeta("INSERT INTO event_sequence (partition_key, last_sequence)")
	mock.ExpectQuery(query).
		WithArgs("1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sequence"}).AddRow(int64(4)))
	mock.ExpectQuery(query).
		WithArgs("1").
		WillReturnError(errors.New("connection reset"))

	seq := NewPostgresSequence(mock)

	got, err := seq.NextSequence(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)

	_, err = seq.NextSequence(context.Background(), "1")
	assert.ErrorContains(t, err, "connection reset")

	_, err = seq.NextSequence(context.Background(), "")
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
