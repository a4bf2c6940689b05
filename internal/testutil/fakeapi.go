// Package testutil provides an in-process stand-in for the remote product/cart
// API, shared by the client, screen and HTTP tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

// RecordedRequest is one call received by the fake.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

type cannedResponse struct {
	status int
	body   string
}

// FakeAPI mimics the dummyjson catalog and cart resources under /catalog and
// /cart. PUT with merge updates single lines, PUT without merge replaces the
// cart, like the real service.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	products []catalog.Product
	carts    map[string][]cart.Line
	requests []RecordedRequest
	canned   map[string][]cannedResponse
	gates    map[string]chan struct{}
	entered  map[string]chan struct{}
}

func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		carts:   map[string][]cart.Line{},
		canned:  map[string][]cannedResponse{},
		gates:   map[string]chan struct{}{},
		entered: map[string]chan struct{}{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /catalog", f.listProducts)
	mux.HandleFunc("GET /catalog/{id}", f.getProduct)
	mux.HandleFunc("GET /cart/{userId}", f.getCart)
	mux.HandleFunc("PUT /cart/{userId}", f.putCart)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	f.Server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeAPI) URL() string { return f.Server.URL }

func (f *FakeAPI) SetProducts(products []catalog.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = products
}

func (f *FakeAPI) SetCart(userID string, lines []cart.Line) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[userID] = append([]cart.Line(nil), lines...)
}

func (f *FakeAPI) Cart(userID string) []cart.Line {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cart.Line(nil), f.carts[userID]...)
}

// Respond queues a canned answer for the next request to method+path.
func (f *FakeAPI) Respond(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.canned[key] = append(f.canned[key], cannedResponse{status: status, body: body})
}

// Hold blocks requests to method+path until release is called. entered fires
// once a request is parked.
func (f *FakeAPI) Hold(method, path string) (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	gate := make(chan struct{})
	in := make(chan struct{}, 16)
	f.gates[key] = gate
	f.entered[key] = in

	var once sync.Once
	return in, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.gates, key)
			delete(f.entered, key)
			f.mu.Unlock()
			close(gate)
		})
	}
}

func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

func (f *FakeAPI) Count(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.Method + " " + r.URL.Path

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		var canned *cannedResponse
		if q := f.canned[key]; len(q) > 0 {
			canned = &q[0]
			f.canned[key] = q[1:]
		}
		gate, in := f.gates[key], f.entered[key]
		f.mu.Unlock()

		if gate != nil {
			in <- struct{}{}
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		if canned != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(canned.status)
			_, _ = io.WriteString(w, canned.body)
			return
		}

		r.Body = io.NopCloser(bytesReader(body))
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) listProducts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	products := append([]catalog.Product{}, f.products...)
	f.mu.Unlock()

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"total":    len(products),
		"skip":     0,
		"limit":    len(products),
	})
}

func (f *FakeAPI) getProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	if p, ok := f.product(id); ok {
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
}

func (f *FakeAPI) getCart(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	f.mu.Lock()
	lines, ok := f.carts[userID]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Cart not found"})
		return
	}
	writeJSON(w, http.StatusOK, cartBody(userID, lines))
}

type cartWrite struct {
	Merge    bool           `json:"merge"`
	Products []cart.LineRef `json:"products"`
}

func (f *FakeAPI) putCart(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	var req cartWrite
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid json"})
		return
	}

	f.mu.Lock()
	current := f.carts[userID]
	next := make([]cart.Line, 0, len(req.Products))
	if req.Merge {
		next = append(next, current...)
		for _, ref := range req.Products {
			merged := false
			for i := range next {
				if next[i].ProductID == ref.ID {
					next[i].Quantity = ref.Quantity
					merged = true
				}
			}
			if !merged {
				next = append(next, f.lineFor(ref, current))
			}
		}
	} else {
		for _, ref := range req.Products {
			next = append(next, f.lineFor(ref, current))
		}
	}
	f.carts[userID] = next
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, cartBody(userID, next))
}

// lineFor must be called with f.mu held.
func (f *FakeAPI) lineFor(ref cart.LineRef, current []cart.Line) cart.Line {
	for _, l := range current {
		if l.ProductID == ref.ID {
			l.Quantity = ref.Quantity
			return l
		}
	}
	for _, p := range f.products {
		if p.ID == ref.ID {
			return cart.Line{ProductID: p.ID, Title: p.Title, Thumbnail: p.Thumbnail, Quantity: ref.Quantity, Price: p.Price}
		}
	}
	return cart.Line{ProductID: ref.ID, Quantity: ref.Quantity}
}

func (f *FakeAPI) product(id int) (catalog.Product, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

type cartLineBody struct {
	cart.Line
	Total money.Amount `json:"total"`
}

func cartBody(userID string, lines []cart.Line) map[string]any {
	total := money.FromInt(0)
	out := make([]cartLineBody, 0, len(lines))
	for _, l := range lines {
		total = total.Add(l.Total())
		out = append(out, cartLineBody{Line: l, Total: l.Total()})
	}
	return map[string]any{
		"id":            1,
		"userId":        userID,
		"products":      out,
		"total":         total,
		"totalProducts": len(lines),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
