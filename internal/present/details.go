package present

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

type SpecRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SpecRows lists the product specifications, skipping the ones without a value.
func SpecRows(p catalog.Product) []SpecRow {
	var weight, dims string
	if p.Weight != nil {
		weight = formatNumber(*p.Weight) + " kg"
	}
	if d := p.Dimensions; d != nil {
		dims = fmt.Sprintf("%s x %s x %s cm", formatNumber(d.Width), formatNumber(d.Height), formatNumber(d.Depth))
	}

	all := []SpecRow{
		{Label: "Peso", Value: weight},
		{Label: "Dimensões (LxAxP)", Value: dims},
		{Label: "Garantia", Value: p.WarrantyInformation},
		{Label: "Envio", Value: p.ShippingInformation},
		{Label: "Política de Devolução", Value: p.ReturnPolicy},
	}

	rows := make([]SpecRow, 0, len(all))
	for _, r := range all {
		if r.Value != "" {
			rows = append(rows, r)
		}
	}
	return rows
}

func StockLabel(stock int) string {
	if stock > 0 {
		return fmt.Sprintf("Em estoque: %d unidades", stock)
	}
	return OutOfStock
}

type ImagesView struct {
	Images     []string `json:"images"`
	EmptyLabel string   `json:"emptyLabel,omitempty"`
	Badge      string   `json:"badge,omitempty"`
}

// Images builds the carousel. The discount badge only shows on a non-empty
// carousel.
func Images(images []string, discount float64) ImagesView {
	if len(images) == 0 {
		return ImagesView{Images: []string{}, EmptyLabel: NoImages}
	}
	return ImagesView{Images: images, Badge: DiscountBadge(discount)}
}

// ShareURL builds the public product link under base.
func ShareURL(base string, productID int) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return base + "/" + strconv.Itoa(productID)
	}
	return u.JoinPath(strconv.Itoa(productID)).String()
}

func ShareMessage(title, link string) string {
	return fmt.Sprintf("Confira este produto: %s. Compre agora em: %s", title, link)
}

func BrandLabel(brand string) string {
	if brand == "" {
		return ""
	}
	return "Marca: " + brand
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
