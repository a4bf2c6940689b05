// Package screens drives the storefront screens on top of viewstate and turns
// their canonical state into render-ready views.
package screens

import (
	"context"
	"errors"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

// StoreAPI is the remote catalog and cart resource.
type StoreAPI interface {
	FetchCatalog(ctx context.Context, limit int) ([]catalog.Product, error)
	FetchProduct(ctx context.Context, productID int) (catalog.Product, error)
	FetchCart(ctx context.Context, userID string) (cart.Snapshot, error)
	UpdateLineQuantity(ctx context.Context, userID string, productID, newQuantity int) error
	RemoveLine(ctx context.Context, userID string, productID int, currentLines []cart.Line) error
}

const DefaultCatalogLimit = 30

// ErrorView is the failure banner of a screen.
type ErrorView struct {
	Message    string `json:"message"`
	Kind       string `json:"kind"`
	StatusCode int    `json:"statusCode,omitempty"`
	Detail     string `json:"detail"`
	Retry      string `json:"retry"`
}

func errorView(message, retry string, err error) *ErrorView {
	if err == nil {
		return nil
	}
	v := &ErrorView{
		Message:    message,
		Kind:       apperr.Kind(err),
		StatusCode: apperr.StatusCode(err),
		Detail:     err.Error(),
	}
	if apperr.Retryable(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		v.Retry = retry
	}
	return v
}
