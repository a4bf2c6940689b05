package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/identity"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/screens"
)

type Handler struct {
	sessions *screens.Registry
	identity *identity.Service
	logger   *zap.Logger
}

func NewHandler(sessions *screens.Registry, identity *identity.Service, logger *zap.Logger) *Handler {
	return &Handler{sessions: sessions, identity: identity, logger: logger}
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// mutationError is returned when a cart write is refused or fails. View is
// the cart as it stands after the attempt.
type mutationError struct {
	Error         string            `json:"error"`
	Kind          string            `json:"kind,omitempty"`
	Field         string            `json:"field,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
	View          *screens.CartView `json:"view,omitempty"`
	Notice        *screens.Notice   `json:"notice,omitempty"`
}

type checkoutResponse struct {
	Checkout screens.CheckoutResult `json:"checkout"`
	Cart     screens.CartView       `json:"cart"`
}

func (h *Handler) session(r *http.Request) *screens.Session {
	return h.sessions.Get(middleware.GetUserID(r.Context()))
}

func (h *Handler) GetHeader(w http.ResponseWriter, r *http.Request) {
	screen := r.URL.Query().Get("screen")
	if screen == "" {
		screen = identity.ScreenCatalog
	}
	v, err := h.identity.Header(r.Context(), middleware.GetUserID(r.Context()), screen)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.identity.Login(r.Context(), middleware.GetUserID(r.Context()), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Logout(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DropSession leaves every screen of the caller. Work still in flight is
// discarded.
func (h *Handler) DropSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Drop(middleware.GetUserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// GetCatalog mounts the catalog on first visit and waits for the load.
// focus=1 refetches when the screen regains focus.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	c := h.session(r).Catalog

	var done <-chan struct{}
	switch {
	case !c.Mounted():
		done = c.Enter(r.Context())
	case r.URL.Query().Get("focus") == "1":
		done = c.Focus(r.Context())
	default:
		if _, err := c.Await(r.Context()); err != nil {
			middleware.WriteError(w, r, http.StatusGatewayTimeout, "request cancelled")
			return
		}
	}
	if !h.wait(w, r, done) {
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

func (h *Handler) RetryCatalog(w http.ResponseWriter, r *http.Request) {
	c := h.session(r).Catalog

	var done <-chan struct{}
	if c.Mounted() {
		done, _ = c.Retry(r.Context())
	} else {
		done = c.Enter(r.Context())
	}
	if !h.wait(w, r, done) {
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	d, ok := h.details(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d.View())
}

func (h *Handler) CloseProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.session(r).CloseDetails(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleReviews(w http.ResponseWriter, r *http.Request) {
	d, ok := h.details(w, r)
	if !ok {
		return
	}
	d.ToggleReviews()
	writeJSON(w, http.StatusOK, d.View())
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	d, ok := h.details(w, r)
	if !ok {
		return
	}
	d.ToggleFavorite()
	writeJSON(w, http.StatusOK, d.View())
}

func (h *Handler) details(w http.ResponseWriter, r *http.Request) (*screens.DetailsScreen, bool) {
	id, ok := productID(w, r)
	if !ok {
		return nil, false
	}
	d, err := h.session(r).OpenDetails(r.Context(), id)
	if err != nil {
		if apperr.StatusCode(err) == http.StatusNotFound {
			middleware.WriteError(w, r, http.StatusNotFound, "product not found")
			return nil, false
		}
		h.fail(w, r, err)
		return nil, false
	}
	return d, true
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c := h.session(r).Cart

	if c.Mounted() {
		if _, err := c.Await(r.Context()); err != nil {
			middleware.WriteError(w, r, http.StatusGatewayTimeout, "request cancelled")
			return
		}
	} else if !h.wait(w, r, c.Enter(r.Context())) {
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

func (h *Handler) RetryCart(w http.ResponseWriter, r *http.Request) {
	c := h.session(r).Cart

	var done <-chan struct{}
	if c.Mounted() {
		done, _ = c.Retry(r.Context())
	} else {
		done = c.Enter(r.Context())
	}
	if !h.wait(w, r, done) {
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "quantity is required")
		return
	}
	h.mutate(w, r, screens.WriteQuantity, func(ctx context.Context, c *screens.CartScreen) error {
		return c.SetQuantity(ctx, id, *req.Quantity)
	})
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, screens.WriteQuantity, func(ctx context.Context, c *screens.CartScreen) error {
		return c.Increment(ctx, id)
	})
}

func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, screens.WriteQuantity, func(ctx context.Context, c *screens.CartScreen) error {
		return c.Decrement(ctx, id)
	})
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, screens.WriteRemove, func(ctx context.Context, c *screens.CartScreen) error {
		return c.Remove(ctx, id)
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	c, ok := h.readyCart(w, r)
	if !ok {
		return
	}
	res, err := c.Checkout(r.Context())
	if err != nil {
		h.mutationFailed(w, r, c, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{Checkout: res, Cart: c.View()})
}

// mutate runs one cart write against the confirmed snapshot and answers
// with the refreshed cart and a notice for the user.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, kind screens.CartWrite, write func(context.Context, *screens.CartScreen) error) {
	c, ok := h.readyCart(w, r)
	if !ok {
		return
	}
	err := write(r.Context(), c)
	notice := screens.WriteNotice(kind, err)
	if err != nil {
		h.mutationFailed(w, r, c, err, &notice)
		return
	}
	v := c.View()
	v.Notice = &notice
	writeJSON(w, http.StatusOK, v)
}

// readyCart mounts the cart when a write arrives before any read, so the
// write always works from a confirmed snapshot.
func (h *Handler) readyCart(w http.ResponseWriter, r *http.Request) (*screens.CartScreen, bool) {
	c := h.session(r).Cart
	if !c.Mounted() {
		if !h.wait(w, r, c.Enter(r.Context())) {
			return nil, false
		}
	}
	return c, true
}

func (h *Handler) mutationFailed(w http.ResponseWriter, r *http.Request, c *screens.CartScreen, err error, notice *screens.Notice) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		middleware.Logger(r.Context(), h.logger).Warn("cart write failed", zap.Error(err))
	}

	view := c.View()
	body := mutationError{
		Error:         err.Error(),
		Kind:          apperr.Kind(err),
		CorrelationID: middleware.GetCorrelationID(r.Context()),
		View:          &view,
		Notice:        notice,
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body.Error = ve.Reason
		body.Field = ve.Field
	}
	writeJSON(w, status, body)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		middleware.Logger(r.Context(), h.logger).Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		middleware.WriteError(w, r, status, ve.Reason)
		return
	}
	middleware.WriteError(w, r, status, err.Error())
}

// wait blocks until done closes. It reports false, after answering, when the
// caller went away first.
func (h *Handler) wait(w http.ResponseWriter, r *http.Request, done <-chan struct{}) bool {
	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-r.Context().Done():
		middleware.WriteError(w, r, http.StatusGatewayTimeout, "request cancelled")
		return false
	}
}

func statusFor(err error) int {
	switch {
	case apperr.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrBusy),
		errors.Is(err, apperr.ErrNotReady),
		errors.Is(err, apperr.ErrNotMounted):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case apperr.Retryable(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil || id < 1 {
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid productId")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
