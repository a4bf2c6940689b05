package events

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "ecommerce.events"

	CartLineQuantityUpdatedRoutingKey = "storefront.cart.line-quantity-updated.v1"
	CartLineRemovedRoutingKey         = "storefront.cart.line-removed.v1"
	CheckoutRequestedRoutingKey       = "storefront.checkout.requested.v1"

	storefrontServiceName = "storefront-go"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

func declareEventsExchange(ch amqpChannel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
