package screens

import (
	"context"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/present"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/viewstate"
)

// CartScreen shows one user's cart. Every mutation is a remote write followed
// by a reload; local state only ever holds confirmed snapshots.
type CartScreen struct {
	*viewstate.Screen[cart.Snapshot]
	userID    string
	api       StoreAPI
	publisher events.Publisher
	formatter *money.Formatter
	logger    *zap.Logger
}

func NewCartScreen(userID string, api StoreAPI, publisher events.Publisher, formatter *money.Formatter, logger *zap.Logger) *CartScreen {
	if publisher == nil {
		publisher = events.NoopPublisher{Logger: logger}
	}
	logger = logger.With(zap.String("user_id", userID))
	fetch := func(ctx context.Context) (cart.Snapshot, error) {
		return api.FetchCart(ctx, userID)
	}
	return &CartScreen{
		Screen:    viewstate.New("cart", fetch, logger),
		userID:    userID,
		api:       api,
		publisher: publisher,
		formatter: formatter,
		logger:    logger,
	}
}

func (c *CartScreen) UserID() string { return c.userID }

func (c *CartScreen) Increment(ctx context.Context, productID int) error {
	return c.adjust(ctx, productID, func(q int) int { return q + 1 })
}

// Decrement never removes a line; going below 1 is rejected.
func (c *CartScreen) Decrement(ctx context.Context, productID int) error {
	return c.adjust(ctx, productID, func(q int) int { return q - 1 })
}

func (c *CartScreen) SetQuantity(ctx context.Context, productID, quantity int) error {
	return c.adjust(ctx, productID, func(int) int { return quantity })
}

func (c *CartScreen) adjust(ctx context.Context, productID int, next func(current int) int) error {
	return c.Mutate(ctx, func(ctx context.Context, current cart.Snapshot) error {
		line, ok := current.Line(productID)
		if !ok {
			return apperr.Validation("productId", "not in cart")
		}
		quantity := next(line.Quantity)
		if err := c.api.UpdateLineQuantity(ctx, c.userID, productID, quantity); err != nil {
			return err
		}
		c.publish(ctx, events.EventTypeCartLineQuantityUpdated, func(meta events.EventMeta) error {
			return c.publisher.PublishLineQuantityUpdated(ctx, meta, c.userID, productID, line.Quantity, quantity)
		})
		return nil
	})
}

// Remove drops a line by resubmitting the rest of the confirmed snapshot.
func (c *CartScreen) Remove(ctx context.Context, productID int) error {
	return c.Mutate(ctx, func(ctx context.Context, current cart.Snapshot) error {
		if err := c.api.RemoveLine(ctx, c.userID, productID, current.Lines); err != nil {
			return err
		}
		remaining := cart.Without(current.Lines, productID)
		c.publish(ctx, events.EventTypeCartLineRemoved, func(meta events.EventMeta) error {
			return c.publisher.PublishLineRemoved(ctx, meta, c.userID, productID, remaining)
		})
		return nil
	})
}

type CheckoutResult struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Lines   int    `json:"lines"`
	Total   string `json:"total"`
}

// Checkout is simulated: it announces the confirmed cart and leaves it as is.
func (c *CartScreen) Checkout(ctx context.Context) (CheckoutResult, error) {
	st := c.State()
	switch {
	case !c.Mounted():
		return CheckoutResult{}, apperr.ErrNotMounted
	case st.Phase == viewstate.Loading || st.Mutating:
		return CheckoutResult{}, apperr.ErrBusy
	case st.Phase != viewstate.Ready:
		return CheckoutResult{}, apperr.ErrNotReady
	case st.Data.Empty():
		return CheckoutResult{}, apperr.Validation("cart", "is empty")
	}

	c.publish(ctx, events.EventTypeCheckoutRequested, func(meta events.EventMeta) error {
		return c.publisher.PublishCheckoutRequested(ctx, meta, st.Data)
	})
	c.logger.Info("checkout requested", zap.Int("lines", len(st.Data.Lines)))

	return CheckoutResult{
		Title:   present.CheckoutLabel,
		Message: present.CheckoutMessage,
		Lines:   len(st.Data.Lines),
		Total:   c.formatter.Format(st.Data.Total),
	}, nil
}

// publish is best effort; a broker failure never fails the screen.
func (c *CartScreen) publish(ctx context.Context, event string, fn func(meta events.EventMeta) error) {
	meta := events.EventMeta{
		CorrelationID: middleware.GetCorrelationID(ctx),
		PartitionKey:  c.userID,
	}
	if err := fn(meta); err != nil {
		c.logger.Warn("publish failed", zap.String("event", event), zap.Error(err))
	}
}

// Notice is the feedback shown after a cart write.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// CartWrite names the kind of cart write a Notice reports on.
type CartWrite int

const (
	WriteQuantity CartWrite = iota
	WriteRemove
)

// WriteNotice returns the feedback for a finished write; err is its outcome.
func WriteNotice(write CartWrite, err error) Notice {
	switch {
	case write == WriteRemove && err == nil:
		return Notice{Title: present.NoticeSuccess, Message: present.RemoveDone}
	case write == WriteRemove:
		return Notice{Title: present.NoticeError, Message: present.RemoveFailed}
	case err == nil:
		return Notice{Title: present.NoticeSuccess, Message: present.QuantityUpdated}
	default:
		return Notice{Title: present.NoticeError, Message: present.QuantityFailed}
	}
}

// RemovePrompt is the confirmation asked before a line is removed.
type RemovePrompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Confirm string `json:"confirm"`
	Cancel  string `json:"cancel"`
}

var removePrompt = RemovePrompt{
	Title:   present.RemoveTitle,
	Message: present.RemovePrompt,
	Confirm: present.RemoveConfirm,
	Cancel:  present.RemoveCancel,
}

type CartLineView struct {
	ProductID      int          `json:"productId"`
	Title          string       `json:"title"`
	Thumbnail      string       `json:"thumbnail"`
	Quantity       int          `json:"quantity"`
	UnitPrice      string       `json:"unitPrice"`
	UnitPriceLabel string       `json:"unitPriceLabel"`
	LineTotal      string       `json:"lineTotal"`
	CanDecrement   bool         `json:"canDecrement"`
	Remove         RemovePrompt `json:"remove"`
}

type CartView struct {
	Phase      viewstate.Phase `json:"phase"`
	UserID     string          `json:"userId"`
	Loading    string          `json:"loading,omitempty"`
	Lines      []CartLineView  `json:"lines"`
	Empty      bool            `json:"empty"`
	EmptyLabel string          `json:"emptyLabel,omitempty"`
	TotalLabel string          `json:"totalLabel,omitempty"`
	Total      string          `json:"total,omitempty"`
	// Sum is the locally derived total, shown next to the remote one when
	// they drift.
	Sum      string     `json:"sum,omitempty"`
	Drifted  bool       `json:"drifted"`
	Mutating bool       `json:"mutating"`
	Checkout string     `json:"checkout,omitempty"`
	Error    *ErrorView `json:"error,omitempty"`
	// Notice is set only on the answer to a cart write.
	Notice *Notice `json:"notice,omitempty"`
}

func (c *CartScreen) View() CartView {
	return c.render(c.State())
}

func (c *CartScreen) render(st viewstate.State[cart.Snapshot]) CartView {
	v := CartView{Phase: st.Phase, UserID: c.userID, Lines: []CartLineView{}, Mutating: st.Mutating}
	switch st.Phase {
	case viewstate.Loading:
		v.Loading = present.CartLoading
	case viewstate.Failed:
		v.Error = errorView(present.CartError, present.RetryLabel, st.Err)
	case viewstate.Ready:
		for _, l := range st.Data.Lines {
			v.Lines = append(v.Lines, CartLineView{
				ProductID:      l.ProductID,
				Title:          l.Title,
				Thumbnail:      l.Thumbnail,
				Quantity:       l.Quantity,
				UnitPrice:      c.formatter.Format(l.Price),
				UnitPriceLabel: present.UnitPriceLabel(c.formatter, l.Price),
				LineTotal:      c.formatter.Format(l.Total()),
				CanDecrement:   l.Quantity > 1 && !st.Mutating,
				Remove:         removePrompt,
			})
		}
		if st.Data.Empty() {
			v.Empty = true
			v.EmptyLabel = present.CartEmpty
			return v
		}
		v.TotalLabel = present.CartTotalLabel
		v.Total = c.formatter.Format(st.Data.Total)
		v.Sum = c.formatter.Format(st.Data.Sum())
		v.Drifted = st.Data.Drifted()
		v.Checkout = present.CheckoutLabel
	}
	return v
}
