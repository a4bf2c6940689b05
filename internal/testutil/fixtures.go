package testutil

import (
	"bytes"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }

func ptr[T any](v T) *T { return &v }

// Products builds n catalog products with ids 1..n and price 10*id.
func Products(n int) []catalog.Product {
	out := make([]catalog.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, catalog.Product{
			ID:        i,
			Title:     fmt.Sprintf("Produto %d", i),
			Price:     money.FromInt(int64(10 * i)),
			Stock:     5,
			Thumbnail: fmt.Sprintf("https://cdn.example/p/%d/thumb.webp", i),
		})
	}
	return out
}

// DetailedProduct is a fully populated product with five reviews.
func DetailedProduct() catalog.Product {
	return catalog.Product{
		ID:                  1,
		Title:               "Essence Mascara Lash Princess",
		Description:         "Popular mascara.",
		Brand:               "Essence",
		Price:               money.FromInt(90),
		DiscountPercentage:  ptr(10.0),
		Rating:              ptr(4.5),
		Stock:               5,
		Thumbnail:           "https://cdn.example/p/1/thumb.webp",
		Images:              []string{"https://cdn.example/p/1/1.webp", "https://cdn.example/p/1/2.webp"},
		Weight:              ptr(2.0),
		Dimensions:          &catalog.Dimensions{Width: 23.17, Height: 14.43, Depth: 28.01},
		WarrantyInformation: "1 month warranty",
		ShippingInformation: "Ships in 1 month",
		ReturnPolicy:        "30 days return policy",
		Reviews: []catalog.Review{
			{Rating: 2, Comment: "Very unhappy with my purchase!", Date: "2024-05-23T08:56:21.618Z", ReviewerName: "John Doe"},
			{Rating: 2, Comment: "Not as described!", Date: "2024-05-23T08:56:21.618Z", ReviewerName: "Nolan Gonzalez"},
			{Rating: 5, Comment: "Very satisfied!", Date: "2024-05-23T08:56:21.618Z", ReviewerName: "Scarlett Wright"},
			{Rating: 4.5, Comment: "Great value.", Date: "2024-05-24T10:00:00.000Z", ReviewerName: "Ana Lima"},
			{Rating: 3, Comment: "Ok.", Date: "2024-05-25T10:00:00.000Z", ReviewerName: "Bruno Costa"},
		},
	}
}

// CartLines is the two-line cart used across tests: product 1 x2, product 2 x1.
func CartLines() []cart.Line {
	return []cart.Line{
		{ProductID: 1, Title: "Produto 1", Quantity: 2, Price: money.FromInt(10)},
		{ProductID: 2, Title: "Produto 2", Quantity: 1, Price: money.FromInt(20)},
	}
}
