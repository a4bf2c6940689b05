package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

const (
	EventTypeCartLineQuantityUpdated = "CartLineQuantityUpdated"
	EventTypeCartLineRemoved         = "CartLineRemoved"
	EventTypeCheckoutRequested       = "CheckoutRequested"

	cartLineQuantityUpdatedSchema = "contracts/events/storefront/CartLineQuantityUpdated.v1.payload.schema.json"
	cartLineRemovedSchema         = "contracts/events/storefront/CartLineRemoved.v1.payload.schema.json"
	checkoutRequestedSchema       = "contracts/events/storefront/CheckoutRequested.v1.payload.schema.json"
)

// EventEnvelope is the shared v1 envelope around a typed payload.
type EventEnvelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      int64     `json:"sequence,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       T         `json:"payload"`
}

func (e EventEnvelope[T]) Validate(expectedName string, expectedVersion int) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName %q", e.EventName)
	}
	if e.EventVersion != expectedVersion {
		return fmt.Errorf("unexpected eventVersion %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	if e.EventID == "" {
		return fmt.Errorf("missing eventId")
	}
	return nil
}

type EventMeta struct {
	CorrelationID string
	CausationID   string
	// PartitionKey defaults to the user id.
	PartitionKey string
}

type CartLineQuantityUpdatedPayload struct {
	UserID           string    `json:"userId"`
	ProductID        int       `json:"productId"`
	PreviousQuantity int       `json:"previousQuantity"`
	Quantity         int       `json:"quantity"`
	Timestamp        time.Time `json:"timestamp"`
}

type CartLineRemovedPayload struct {
	UserID    string         `json:"userId"`
	ProductID int            `json:"productId"`
	Remaining []cart.LineRef `json:"remaining"`
	Timestamp time.Time      `json:"timestamp"`
}

type CheckoutLine struct {
	ProductID int          `json:"productId"`
	Quantity  int          `json:"quantity"`
	UnitPrice money.Amount `json:"unitPrice"`
}

type CheckoutRequestedPayload struct {
	UserID    string         `json:"userId"`
	CartID    int            `json:"cartId,omitempty"`
	Lines     []CheckoutLine `json:"lines"`
	Total     money.Amount   `json:"total"`
	Timestamp time.Time      `json:"timestamp"`
}

type (
	CartLineQuantityUpdatedEvent = EventEnvelope[CartLineQuantityUpdatedPayload]
	CartLineRemovedEvent         = EventEnvelope[CartLineRemovedPayload]
	CheckoutRequestedEvent       = EventEnvelope[CheckoutRequestedPayload]
)

func newEnvelope[T any](name, schema string, meta EventMeta, seq int64, producer string, payload T, occurredAt time.Time) EventEnvelope[T] {
	return EventEnvelope[T]{
		EventName:     name,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  meta.PartitionKey,
		Sequence:      seq,
		OccurredAt:    occurredAt,
		Schema:        schema,
		Payload:       payload,
	}
}

// CheckoutLines snapshots the lines being checked out.
func CheckoutLines(lines []cart.Line) []CheckoutLine {
	out := make([]CheckoutLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, CheckoutLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.Price})
	}
	return out
}
