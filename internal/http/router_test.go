package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/identity"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/present"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/screens"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/testutil"
)

type catalogBody struct {
	Phase string
	Items []screens.CatalogItem
	Empty bool
	Error *screens.ErrorView
}

type cartBody struct {
	Phase    string
	Lines    []screens.CartLineView
	Empty    bool
	Total    string
	Mutating bool
	Error    *screens.ErrorView
	Notice   *screens.Notice
}

type detailsBody struct {
	Price            string
	OriginalPrice    string
	DescriptionLabel string
	Favorite         bool
	Reviews          *struct {
		Shown  []json.RawMessage
		Toggle string
	}
}

type failedWrite struct {
	Error  string
	Kind   string
	Field  string
	View   cartBody
	Notice *screens.Notice
}

type storefront struct {
	api      *testutil.FakeAPI
	sessions *screens.Registry
	handler  http.Handler
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	api.SetProducts(testutil.Products(3))
	api.SetCart("1", testutil.CartLines())

	base, err := clients.NewClient("product-api", api.URL(), api.Server.Client())
	require.NoError(t, err)
	store := clients.NewStoreClient(base, clients.DefaultRoutes(), zap.NewNop())

	sessions := screens.NewRegistry(screens.Deps{
		API:          store,
		Logger:       zap.NewNop(),
		ShareBaseURL: "https://seusite.com/produto",
	})
	t.Cleanup(sessions.Close)

	return &storefront{
		api:      api,
		sessions: sessions,
		handler: NewRouter(Deps{
			Logger:           zap.NewNop(),
			CORSAllowOrigins: []string{"*"},
			Sessions:         sessions,
			Identity:         identity.NewService(identity.NewMemoryStore(), 0, zap.NewNop()),
			HealthProbes:     []clients.HealthProbe{{Name: "product-api", Client: base, Path: "/health"}},
		}),
	}
}

func (s *storefront) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(middleware.HeaderUserID, "1")
	req.Header.Set(middleware.HeaderCorrelationID, "cid-test")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "storefront", decode[map[string]string](t, rec)["service"])

	rec = s.do(t, http.MethodGet, "/health/upstream", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Status   string
		Upstream []clients.HealthResult
	}](t, rec)
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Upstream, 1)
	assert.True(t, body.Upstream[0].OK)
}

func TestHealthReportsDegradedUpstream(t *testing.T) {
	s := newStorefront(t)
	s.api.Respond(http.MethodGet, "/health", http.StatusServiceUnavailable, `{}`)

	rec := s.do(t, http.MethodGet, "/health/upstream", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", decode[map[string]any](t, rec)["status"])
}

func TestRequiresUserID(t *testing.T) {
	s := newStorefront(t)

	req := httptest.NewRequest(http.MethodGet, "/api/storefront/catalog", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, s.api.Count(http.MethodGet, "/catalog"))
}

func TestGetCatalog(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodGet, "/api/storefront/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[catalogBody](t, rec)
	assert.Equal(t, "ready", body.Phase)
	require.Len(t, body.Items, 3)
	assert.Equal(t, "R$ 10,00", body.Items[0].Price)
	assert.Equal(t, "limit=30", s.api.Requests()[0].Query)

	// A second visit shows what is loaded; focus refetches.
	s.do(t, http.MethodGet, "/api/storefront/catalog", "")
	assert.Equal(t, 1, s.api.Count(http.MethodGet, "/catalog"))
	s.do(t, http.MethodGet, "/api/storefront/catalog?focus=1", "")
	assert.Equal(t, 2, s.api.Count(http.MethodGet, "/catalog"))
}

func TestCatalogFailureThenRetry(t *testing.T) {
	s := newStorefront(t)
	s.api.Respond(http.MethodGet, "/catalog", http.StatusInternalServerError, `{}`)

	rec := s.do(t, http.MethodGet, "/api/storefront/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	failed := decode[catalogBody](t, rec)
	assert.Equal(t, "failed", failed.Phase)
	require.NotNil(t, failed.Error)
	assert.Equal(t, present.CatalogError, failed.Error.Message)
	assert.Equal(t, http.StatusInternalServerError, failed.Error.StatusCode)
	assert.Empty(t, failed.Items)

	rec = s.do(t, http.MethodPost, "/api/storefront/catalog/retry", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[catalogBody](t, rec)
	assert.Equal(t, "ready", ready.Phase)
	assert.Len(t, ready.Items, 3)
}

func TestGetProduct(t *testing.T) {
	s := newStorefront(t)
	s.api.SetProducts([]catalog.Product{testutil.DetailedProduct()})

	rec := s.do(t, http.MethodGet, "/api/storefront/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[detailsBody](t, rec)
	assert.Equal(t, "R$ 90,00", v.Price)
	assert.Equal(t, "R$ 100,00", v.OriginalPrice)
	assert.Equal(t, present.DescriptionLabel, v.DescriptionLabel)
	require.NotNil(t, v.Reviews)
	assert.Len(t, v.Reviews.Shown, present.InitialReviews)

	rec = s.do(t, http.MethodPost, "/api/storefront/products/1/reviews/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[detailsBody](t, rec)
	assert.Len(t, v.Reviews.Shown, 5)
	assert.Equal(t, present.ShowLessReviews, v.Reviews.Toggle)

	rec = s.do(t, http.MethodPost, "/api/storefront/products/1/favorite/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[detailsBody](t, rec).Favorite)

	rec = s.do(t, http.MethodDelete, "/api/storefront/products/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetProductErrors(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodGet, "/api/storefront/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/storefront/products/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.api.Respond(http.MethodGet, "/catalog/2", http.StatusInternalServerError, `{}`)
	rec = s.do(t, http.MethodGet, "/api/storefront/products/2", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "cid-test", decode[middleware.ErrorResponse](t, rec).CorrelationID)
}

func TestGetCart(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodGet, "/api/storefront/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[cartBody](t, rec)
	assert.Equal(t, "ready", body.Phase)
	require.Len(t, body.Lines, 2)
	assert.Equal(t, "R$ 40,00", body.Total)
}

func TestCartWrites(t *testing.T) {
	s := newStorefront(t)
	s.do(t, http.MethodGet, "/api/storefront/cart", "")

	rec := s.do(t, http.MethodPost, "/api/storefront/cart/lines/1/increment", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[cartBody](t, rec)
	assert.Equal(t, 3, body.Lines[0].Quantity)
	assert.Equal(t, "R$ 50,00", body.Total)
	assert.Equal(t, &screens.Notice{Title: present.NoticeSuccess, Message: present.QuantityUpdated}, body.Notice)
	assert.Equal(t, present.RemovePrompt, body.Lines[0].Remove.Message)

	rec = s.do(t, http.MethodPut, "/api/storefront/cart/lines/2", `{"quantity":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[cartBody](t, rec).Lines[1].Quantity)

	rec = s.do(t, http.MethodPost, "/api/storefront/cart/lines/2/decrement", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[cartBody](t, rec).Lines[1].Quantity)

	rec = s.do(t, http.MethodDelete, "/api/storefront/cart/lines/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[cartBody](t, rec)
	require.Len(t, body.Lines, 1)
	assert.Equal(t, 2, body.Lines[0].ProductID)
	assert.Equal(t, &screens.Notice{Title: present.NoticeSuccess, Message: present.RemoveDone}, body.Notice)
	assert.Len(t, s.api.Cart("1"), 1)

	rec = s.do(t, http.MethodGet, "/api/storefront/cart", "")
	assert.Nil(t, decode[cartBody](t, rec).Notice)
}

func TestCartWriteMountsCartFirst(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodPost, "/api/storefront/cart/lines/2/increment", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[cartBody](t, rec).Lines[1].Quantity)
}

func TestCartWriteRejections(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		field  string
	}{
		{"quantity below one", http.MethodPut, "/api/storefront/cart/lines/1", `{"quantity":0}`, http.StatusUnprocessableEntity, "quantity"},
		{"decrement at one", http.MethodPost, "/api/storefront/cart/lines/2/decrement", "", http.StatusUnprocessableEntity, "quantity"},
		{"line not in cart", http.MethodPost, "/api/storefront/cart/lines/3/increment", "", http.StatusUnprocessableEntity, ""},
		{"missing quantity", http.MethodPut, "/api/storefront/cart/lines/1", `{}`, http.StatusBadRequest, ""},
		{"bad product id", http.MethodDelete, "/api/storefront/cart/lines/x", "", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStorefront(t)
			s.do(t, http.MethodGet, "/api/storefront/cart", "")
			before := s.api.Count(http.MethodPut, "/cart/1")

			rec := s.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, before, s.api.Count(http.MethodPut, "/cart/1"), "nothing may reach the API")

			if tt.status == http.StatusUnprocessableEntity {
				body := decode[failedWrite](t, rec)
				assert.Equal(t, "validation", body.Kind)
				if tt.field != "" {
					assert.Equal(t, tt.field, body.Field)
				}
				assert.Equal(t, "ready", body.View.Phase)
				assert.Len(t, body.View.Lines, 2)
				require.NotNil(t, body.Notice)
				assert.Equal(t, present.NoticeError, body.Notice.Title)
			}
		})
	}
}

func TestCartWriteUpstreamFailure(t *testing.T) {
	s := newStorefront(t)
	s.do(t, http.MethodGet, "/api/storefront/cart", "")
	s.api.Respond(http.MethodPut, "/cart/1", http.StatusServiceUnavailable, `{}`)

	rec := s.do(t, http.MethodPost, "/api/storefront/cart/lines/1/increment", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[failedWrite](t, rec)
	assert.Equal(t, "network", body.Kind)
	assert.Equal(t, "failed", body.View.Phase)
	require.NotNil(t, body.View.Error)
	assert.Equal(t, present.CartError, body.View.Error.Message)
	assert.Equal(t, &screens.Notice{Title: present.NoticeError, Message: present.QuantityFailed}, body.Notice)

	rec = s.do(t, http.MethodPost, "/api/storefront/cart/retry", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[cartBody](t, rec).Phase)

	s.api.Respond(http.MethodPut, "/cart/1", http.StatusServiceUnavailable, `{}`)
	rec = s.do(t, http.MethodDelete, "/api/storefront/cart/lines/1", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, &screens.Notice{Title: present.NoticeError, Message: present.RemoveFailed}, decode[failedWrite](t, rec).Notice)
}

func TestCheckout(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodPost, "/api/storefront/cart/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Checkout screens.CheckoutResult
		Cart     cartBody
	}](t, rec)
	assert.Equal(t, present.CheckoutMessage, body.Checkout.Message)
	assert.Equal(t, 2, body.Checkout.Lines)
	assert.Equal(t, "R$ 40,00", body.Checkout.Total)
	assert.Len(t, body.Cart.Lines, 2)
}

func TestCheckoutEmptyCart(t *testing.T) {
	s := newStorefront(t)
	s.api.SetCart("1", nil)

	rec := s.do(t, http.MethodPost, "/api/storefront/cart/checkout", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	failed := decode[failedWrite](t, rec)
	assert.True(t, failed.View.Empty)
	assert.Nil(t, failed.Notice)
}

func TestLoginAndHeader(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodGet, "/api/storefront/header?screen=cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	header := decode[identity.HeaderView](t, rec)
	assert.False(t, header.LoggedIn)
	assert.True(t, header.Back)
	assert.Equal(t, present.LoginLabel, header.Login)

	rec = s.do(t, http.MethodPost, "/api/storefront/login", `{"email":"","password":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, present.LoginMissingField, decode[middleware.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/api/storefront/login", `{"email":"ana@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bem-vindo(a), ana!", decode[identity.LoginResult](t, rec).Message)

	rec = s.do(t, http.MethodGet, "/api/storefront/header", "")
	header = decode[identity.HeaderView](t, rec)
	assert.True(t, header.LoggedIn)
	assert.Equal(t, "ana", header.UserName)
	assert.False(t, header.Back)

	rec = s.do(t, http.MethodPost, "/api/storefront/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/storefront/header", "")
	assert.False(t, decode[identity.HeaderView](t, rec).LoggedIn)
}

func TestDropSession(t *testing.T) {
	s := newStorefront(t)
	s.do(t, http.MethodGet, "/api/storefront/cart", "")
	require.Equal(t, 1, s.sessions.Len())

	rec := s.do(t, http.MethodDelete, "/api/storefront/session", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, s.sessions.Len())
}
