package catalog

import (
	"encoding/json"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

type Review struct {
	Rating        float64 `json:"rating"`
	Comment       string  `json:"comment"`
	Date          string  `json:"date"`
	ReviewerName  string  `json:"reviewerName"`
	ReviewerEmail string  `json:"reviewerEmail,omitempty"`
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

type Product struct {
	ID                  int          `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description,omitempty"`
	Brand               string       `json:"brand,omitempty"`
	Category            string       `json:"category,omitempty"`
	Price               money.Amount `json:"price"`
	DiscountPercentage  *float64     `json:"discountPercentage,omitempty"`
	Rating              *float64     `json:"rating,omitempty"`
	Stock               int          `json:"stock"`
	Thumbnail           string       `json:"thumbnail"`
	Images              []string     `json:"images,omitempty"`
	Weight              *float64     `json:"weight,omitempty"`
	Dimensions          *Dimensions  `json:"dimensions,omitempty"`
	WarrantyInformation string       `json:"warrantyInformation,omitempty"`
	ShippingInformation string       `json:"shippingInformation,omitempty"`
	ReturnPolicy        string       `json:"returnPolicy,omitempty"`
	Reviews             []Review     `json:"reviews,omitempty"`
}

// UnmarshalJSON leaves Price as money.Missing when the key is absent, so a
// product without a price never shows as free.
func (p *Product) UnmarshalJSON(data []byte) error {
	type product Product
	v := product{Price: money.Missing()}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Product(v)
	return nil
}

// Discount returns the discount percentage, or 0 when the product has none.
func (p Product) Discount() float64 {
	if p.DiscountPercentage == nil {
		return 0
	}
	return *p.DiscountPercentage
}

func (p Product) InStock() bool { return p.Stock > 0 }
