package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

// Publisher announces cart activity. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishLineQuantityUpdated(ctx context.Context, meta EventMeta, userID string, productID, previous, quantity int) error
	PublishLineRemoved(ctx context.Context, meta EventMeta, userID string, productID int, remaining []cart.LineRef) error
	PublishCheckoutRequested(ctx context.Context, meta EventMeta, snapshot cart.Snapshot) error
	Close() error
}

type RabbitPublisher struct {
	ch       amqpChannel
	seq      SequenceSource
	producer string
	now      func() time.Time
}

type PublisherOptions struct {
	Producer string
}

func NewPublisher(conn *amqp.Connection, seq SequenceSource, opts PublisherOptions) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return newPublisher(ch, seq, opts)
}

func newPublisher(ch amqpChannel, seq SequenceSource, opts PublisherOptions) (*RabbitPublisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = storefrontServiceName
	}
	if seq == nil {
		seq = NewMemorySequence()
	}

	return &RabbitPublisher{ch: ch, seq: seq, producer: producer, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishLineQuantityUpdated(ctx context.Context, meta EventMeta, userID string, productID, previous, quantity int) error {
	meta = withPartition(meta, userID)
	seq, err := p.seq.NextSequence(ctx, meta.PartitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	now := p.now()
	env := newEnvelope(EventTypeCartLineQuantityUpdated, cartLineQuantityUpdatedSchema, meta, seq, p.producer, CartLineQuantityUpdatedPayload{
		UserID:           userID,
		ProductID:        productID,
		PreviousQuantity: previous,
		Quantity:         quantity,
		Timestamp:        now,
	}, now)
	return p.publish(ctx, CartLineQuantityUpdatedRoutingKey, env)
}

func (p *RabbitPublisher) PublishLineRemoved(ctx context.Context, meta EventMeta, userID string, productID int, remaining []cart.LineRef) error {
	meta = withPartition(meta, userID)
	seq, err := p.seq.NextSequence(ctx, meta.PartitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	if remaining == nil {
		remaining = []cart.LineRef{}
	}
	now := p.now()
	env := newEnvelope(EventTypeCartLineRemoved, cartLineRemovedSchema, meta, seq, p.producer, CartLineRemovedPayload{
		UserID:    userID,
		ProductID: productID,
		Remaining: remaining,
		Timestamp: now,
	}, now)
	return p.publish(ctx, CartLineRemovedRoutingKey, env)
}

func (p *RabbitPublisher) PublishCheckoutRequested(ctx context.Context, meta EventMeta, snapshot cart.Snapshot) error {
	meta = withPartition(meta, snapshot.UserID)
	seq, err := p.seq.NextSequence(ctx, meta.PartitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	now := p.now()
	env := newEnvelope(EventTypeCheckoutRequested, checkoutRequestedSchema, meta, seq, p.producer, CheckoutRequestedPayload{
		UserID:    snapshot.UserID,
		CartID:    snapshot.ID,
		Lines:     CheckoutLines(snapshot.Lines),
		Total:     snapshot.Total,
		Timestamp: now,
	}, now)
	return p.publish(ctx, CheckoutRequestedRoutingKey, env)
}

func (p *RabbitPublisher) publish(ctx context.Context, routingKey string, env any) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", routingKey, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func withPartition(meta EventMeta, userID string) EventMeta {
	if meta.PartitionKey == "" {
		meta.PartitionKey = userID
	}
	return meta
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct {
	Logger *zap.Logger
}

func (n NoopPublisher) PublishLineQuantityUpdated(_ context.Context, _ EventMeta, userID string, productID, _, quantity int) error {
	n.debug(EventTypeCartLineQuantityUpdated, zap.String("user_id", userID), zap.Int("product_id", productID), zap.Int("quantity", quantity))
	return nil
}

func (n NoopPublisher) PublishLineRemoved(_ context.Context, _ EventMeta, userID string, productID int, _ []cart.LineRef) error {
	n.debug(EventTypeCartLineRemoved, zap.String("user_id", userID), zap.Int("product_id", productID))
	return nil
}

func (n NoopPublisher) PublishCheckoutRequested(_ context.Context, _ EventMeta, snapshot cart.Snapshot) error {
	n.debug(EventTypeCheckoutRequested, zap.String("user_id", snapshot.UserID), zap.Int("lines", len(snapshot.Lines)))
	return nil
}

func (n NoopPublisher) Close() error { return nil }

func (n NoopPublisher) debug(event string, fields ...zap.Field) {
	if n.Logger == nil {
		return
	}
	n.Logger.Debug("event not published, no broker configured", append(fields, zap.String("event", event))...)
}
