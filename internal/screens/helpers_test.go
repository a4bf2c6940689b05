package screens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/testutil"
)

func newStore(t *testing.T, api *testutil.FakeAPI) *clients.StoreClient {
	t.Helper()
	base, err := clients.NewClient("product-api", api.URL(), api.Server.Client())
	require.NoError(t, err)
	return clients.NewStoreClient(base, clients.DefaultRoutes(), zap.NewNop())
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for screen")
	}
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("request never reached the fake API")
	}
}

type recordedEvent struct {
	name      string
	meta      events.EventMeta
	userID    string
	productID int
	previous  int
	quantity  int
	remaining []cart.LineRef
	snapshot  cart.Snapshot
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	fail   bool
}

func (p *recordingPublisher) add(ev recordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) PublishLineQuantityUpdated(_ context.Context, meta events.EventMeta, userID string, productID, previous, quantity int) error {
	return p.add(recordedEvent{name: events.EventTypeCartLineQuantityUpdated, meta: meta, userID: userID, productID: productID, previous: previous, quantity: quantity})
}

func (p *recordingPublisher) PublishLineRemoved(_ context.Context, meta events.EventMeta, userID string, productID int, remaining []cart.LineRef) error {
	return p.add(recordedEvent{name: events.EventTypeCartLineRemoved, meta: meta, userID: userID, productID: productID, remaining: remaining})
}

func (p *recordingPublisher) PublishCheckoutRequested(_ context.Context, meta events.EventMeta, snapshot cart.Snapshot) error {
	return p.add(recordedEvent{name: events.EventTypeCheckoutRequested, meta: meta, userID: snapshot.UserID, snapshot: snapshot})
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) recorded() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}
