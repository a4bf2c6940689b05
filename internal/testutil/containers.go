//go:build integration

package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
)

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)

	terminate := func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		_ = container.Terminate(cleanupCtx)
	}
	return host + ":" + mappedPort.Port(), terminate
}

// StartRabbitMQ launches a RabbitMQ container and returns a ready AMQP
// connection plus a cleanup function registered with t.Cleanup.
func StartRabbitMQ(t *testing.T) (*amqp.Connection, func()) {
	t.Helper()

	addr, terminate := startContainer(t, testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
	}, "5672")

	conn, err := amqp.DialConfig("amqp://"+addr+"/", amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = conn.Close()
		terminate()
	}
	t.Cleanup(cleanup)
	return conn, cleanup
}

// StartPostgres launches Postgres, applies the storefront migrations and
// returns a pool.
func StartPostgres(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	addr, terminate := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "storefront", "POSTGRES_USER": "storefront", "POSTGRES_DB": "storefront"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}, "5432")

	dsn := fmt.Sprintf("postgres://storefront:storefront@%s/storefront?sslmode=disable", addr)
	require.NoError(t, db.RunMigrations(dsn, zap.NewNop()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		terminate()
	}
	t.Cleanup(cleanup)
	return pool, cleanup
}

func StartRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	addr, terminate := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}, "6379")

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	cleanup := func() {
		_ = rdb.Close()
		terminate()
	}
	t.Cleanup(cleanup)
	return rdb, cleanup
}
