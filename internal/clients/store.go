package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

const maxBodyBytes = 4 << 20

// Routes are the upstream resource paths. dummyjson serves them under
// /products and /carts.
type Routes struct {
	CatalogPath string
	CartPath    string
}

func DefaultRoutes() Routes {
	return Routes{CatalogPath: "/catalog", CartPath: "/cart"}
}

// StoreClient talks to the remote product/cart API. Every operation returns
// either its payload or one of apperr's NetworkError, DecodeError or
// ValidationError. Nothing is cached and no shared state is touched.
type StoreClient struct {
	c      *Client
	routes Routes
	logger *zap.Logger
}

func NewStoreClient(c *Client, routes Routes, logger *zap.Logger) *StoreClient {
	return &StoreClient{c: c, routes: routes, logger: logger.Named("store-client")}
}

type catalogResponse struct {
	Products []catalog.Product `json:"products"`
}

// FetchCatalog returns at most limit products.
func (sc *StoreClient) FetchCatalog(ctx context.Context, limit int) ([]catalog.Product, error) {
	const op = "fetch catalog"
	if limit <= 0 {
		return nil, apperr.Validation("limit", "must be positive")
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var body catalogResponse
	if err := sc.getJSON(ctx, op, sc.routes.CatalogPath, q, &body); err != nil {
		return nil, err
	}

	products := body.Products
	if products == nil {
		products = []catalog.Product{}
	}
	if len(products) > limit {
		sc.logger.Warn("upstream ignored limit", zap.Int("limit", limit), zap.Int("received", len(products)))
		products = products[:limit]
	}
	return products, nil
}

func (sc *StoreClient) FetchProduct(ctx context.Context, productID int) (catalog.Product, error) {
	const op = "fetch product"
	if productID <= 0 {
		return catalog.Product{}, apperr.Validation("productId", "must be positive")
	}

	var p catalog.Product
	if err := sc.getJSON(ctx, op, sc.routes.CatalogPath+"/"+strconv.Itoa(productID), nil, &p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

type cartResponse struct {
	ID       int             `json:"id"`
	Products []cart.Line     `json:"products"`
	Total    json.RawMessage `json:"total"`
}

// FetchCart tolerates a missing products list or total.
func (sc *StoreClient) FetchCart(ctx context.Context, userID string) (cart.Snapshot, error) {
	const op = "fetch cart"
	if userID == "" {
		return cart.Snapshot{}, apperr.Validation("userId", "required")
	}

	var body cartResponse
	if err := sc.getJSON(ctx, op, sc.cartPath(userID), nil, &body); err != nil {
		return cart.Snapshot{}, err
	}

	total := money.FromInt(0)
	if len(body.Total) > 0 && string(body.Total) != "null" {
		if err := json.Unmarshal(body.Total, &total); err != nil {
			return cart.Snapshot{}, &apperr.DecodeError{Op: op, Err: err}
		}
	}

	lines := cart.Normalize(body.Products)
	if dropped := len(body.Products) - len(lines); dropped > 0 {
		sc.logger.Warn("dropped cart lines without quantity", zap.String("user_id", userID), zap.Int("dropped", dropped))
	}

	return cart.Snapshot{ID: body.ID, UserID: userID, Lines: lines, Total: total}, nil
}

type mergeWrite struct {
	Merge    bool           `json:"merge"`
	Products []cart.LineRef `json:"products"`
}

type replaceWrite struct {
	Products []cart.LineRef `json:"products"`
}

// UpdateLineQuantity changes one line with a merge write; other lines are left
// alone. Quantities below 1 are rejected locally, removal is RemoveLine.
func (sc *StoreClient) UpdateLineQuantity(ctx context.Context, userID string, productID, newQuantity int) error {
	const op = "update line quantity"
	if userID == "" {
		return apperr.Validation("userId", "required")
	}
	if newQuantity < 1 {
		return apperr.Validation("quantity", "must be at least 1")
	}

	return sc.putJSON(ctx, op, sc.cartPath(userID), mergeWrite{
		Merge:    true,
		Products: []cart.LineRef{{ID: productID, Quantity: newQuantity}},
	})
}

// RemoveLine replaces the whole cart with every line of currentLines except
// productID. The cart API has no delete-by-id; currentLines must be the last
// confirmed snapshot or lines get resurrected or dropped.
func (sc *StoreClient) RemoveLine(ctx context.Context, userID string, productID int, currentLines []cart.Line) error {
	const op = "remove line"
	if userID == "" {
		return apperr.Validation("userId", "required")
	}

	return sc.putJSON(ctx, op, sc.cartPath(userID), replaceWrite{
		Products: cart.Without(currentLines, productID),
	})
}

func (sc *StoreClient) cartPath(userID string) string {
	return sc.routes.CartPath + "/" + url.PathEscape(userID)
}

func (sc *StoreClient) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	resp, err := sc.c.Do(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &apperr.DecodeError{Op: op, Err: err}
	}

	sc.logger.Debug("upstream read", zap.String("op", op), zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func (sc *StoreClient) putJSON(ctx context.Context, op, path string, in any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	resp, err := sc.c.Do(ctx, http.MethodPut, path, nil, bytes.NewReader(payload), headers)
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	sc.logger.Debug("upstream write", zap.String("op", op), zap.String("path", path))
	return nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return &apperr.NetworkError{Op: op, StatusCode: resp.StatusCode}
}
