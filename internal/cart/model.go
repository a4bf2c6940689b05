package cart

import (
	"encoding/json"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

// Line is one product-quantity pair as last confirmed by the cart API.
type Line struct {
	ProductID int          `json:"id"`
	Title     string       `json:"title,omitempty"`
	Thumbnail string       `json:"thumbnail,omitempty"`
	Quantity  int          `json:"quantity"`
	Price     money.Amount `json:"price"`
}

func (l *Line) UnmarshalJSON(data []byte) error {
	type line Line
	v := line{Price: money.Missing()}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = Line(v)
	return nil
}

// Total is unit price times quantity. It is computed on demand and never stored.
func (l Line) Total() money.Amount {
	return l.Price.Mul(l.Quantity)
}

// Snapshot is the full cart as returned by the last successful fetch. Total is
// the remote value and is what gets displayed.
type Snapshot struct {
	ID     int          `json:"cartId,omitempty"`
	UserID string       `json:"userId"`
	Lines  []Line       `json:"lines"`
	Total  money.Amount `json:"total"`
}

func (s Snapshot) Empty() bool { return len(s.Lines) == 0 }

func (s Snapshot) Line(productID int) (Line, bool) {
	for _, l := range s.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

// Sum recomputes the total from the lines as currently known.
func (s Snapshot) Sum() money.Amount {
	total := money.FromInt(0)
	for _, l := range s.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// Drifted reports whether the remote total disagrees with the line sum.
func (s Snapshot) Drifted() bool {
	return !s.Total.Equal(s.Sum())
}

// LineRef is the wire form of a line in cart writes.
type LineRef struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// Without returns every line except productID, quantities preserved. The cart
// API has no delete-by-id, so a removal is a full replacement with this set.
func Without(lines []Line, productID int) []LineRef {
	out := make([]LineRef, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == productID {
			continue
		}
		out = append(out, LineRef{ID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

// Normalize drops lines that carry a quantity below 1; such a line means the
// product was removed.
func Normalize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		out = append(out, l)
	}
	return out
}
