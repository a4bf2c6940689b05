//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/screens"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/testutil"
)

func bindQueue(t *testing.T, conn *amqp.Connection, routingKey string) <-chan amqp.Delivery {
	t.Helper()

	ch, err := conn.Channel()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	require.NoError(t, ch.ExchangeDeclare(events.EventsExchange, "topic", true, false, false, false, nil))
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, routingKey, events.EventsExchange, false, nil))

	msgs, err := ch.Consume(q.Name, "storefront-it-"+uuid.NewString(), true, true, false, false, nil)
	require.NoError(t, err)
	return msgs
}

func receive[T any](t *testing.T, msgs <-chan amqp.Delivery) events.EventEnvelope[T] {
	t.Helper()
	select {
	case msg := <-msgs:
		var env events.EventEnvelope[T]
		require.NoError(t, json.Unmarshal(msg.Body, &env))
		return env
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for event")
		return events.EventEnvelope[T]{}
	}
}

func TestPublisherDeliversCartEvents(t *testing.T) {
	conn, _ := testutil.StartRabbitMQ(t)
	rdb, _ := testutil.StartRedis(t)

	updated := bindQueue(t, conn, events.CartLineQuantityUpdatedRoutingKey)
	removed := bindQueue(t, conn, events.CartLineRemovedRoutingKey)
	checkout := bindQueue(t, conn, events.CheckoutRequestedRoutingKey)

	pub, err := events.NewPublisher(conn, events.NewRedisSequence(rdb, ""), events.PublisherOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	api := testutil.NewFakeAPI(t)
	api.SetProducts(testutil.Products(3))
	api.SetCart("7", testutil.CartLines())
	base, err := clients.NewClient("product-api", api.URL(), api.Server.Client())
	require.NoError(t, err)

	c := screens.NewCartScreen("7", clients.NewStoreClient(base, clients.DefaultRoutes(), zap.NewNop()), pub, money.DefaultFormatter(), zap.NewNop())
	ctx := context.Background()
	<-c.Enter(ctx)

	require.NoError(t, c.Increment(ctx, 1))
	up := receive[events.CartLineQuantityUpdatedPayload](t, updated)
	require.NoError(t, up.Validate(events.EventTypeCartLineQuantityUpdated, 1))
	assert.Equal(t, "7", up.PartitionKey)
	assert.Equal(t, int64(1), up.Sequence)
	assert.Equal(t, 2, up.Payload.PreviousQuantity)
	assert.Equal(t, 3, up.Payload.Quantity)

	require.NoError(t, c.Remove(ctx, 1))
	rm := receive[events.CartLineRemovedPayload](t, removed)
	assert.Equal(t, int64(2), rm.Sequence)
	assert.Equal(t, []cart.LineRef{{ID: 2, Quantity: 1}}, rm.Payload.Remaining)

	res, err := c.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Lines)
	co := receive[events.CheckoutRequestedPayload](t, checkout)
	assert.Equal(t, int64(3), co.Sequence)
	require.Len(t, co.Payload.Lines, 1)
	assert.Equal(t, 2, co.Payload.Lines[0].ProductID)
}
