package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/identity"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/screens"
)

type Deps struct {
	Logger           *zap.Logger
	CORSAllowOrigins []string

	Sessions *screens.Registry
	Identity *identity.Service

	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.CORSAllowOrigins))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(d.Logger))

	health := &HealthHandler{Probes: d.HealthProbes}
	r.Get("/health", health.Service)
	r.Get("/health/upstream", health.Upstreams)

	h := NewHandler(d.Sessions, d.Identity, d.Logger)
	r.Route("/api/storefront", func(r chi.Router) {
		r.Use(middleware.RequireUserID)

		r.Get("/header", h.GetHeader)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Delete("/session", h.DropSession)

		r.Get("/catalog", h.GetCatalog)
		r.Post("/catalog/retry", h.RetryCatalog)

		r.Route("/products/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProduct)
			r.Delete("/", h.CloseProduct)
			r.Post("/reviews/toggle", h.ToggleReviews)
			r.Post("/favorite/toggle", h.ToggleFavorite)
		})

		r.Get("/cart", h.GetCart)
		r.Post("/cart/retry", h.RetryCart)
		r.Post("/cart/checkout", h.Checkout)
		r.Route("/cart/lines/{productId}", func(r chi.Router) {
			r.Put("/", h.SetQuantity)
			r.Delete("/", h.RemoveLine)
			r.Post("/increment", h.Increment)
			r.Post("/decrement", h.Decrement)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
