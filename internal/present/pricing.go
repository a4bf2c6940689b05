package present

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

// OriginalPrice reverses a percentage discount: price / (1 - d/100). It
// reports false when there is no usable discount or the price is not numeric.
func OriginalPrice(price money.Amount, discount float64) (money.Amount, bool) {
	if !(discount > 0 && discount < 100) {
		return money.Amount{}, false
	}
	p, ok := price.Decimal()
	if !ok {
		return money.Amount{}, false
	}

	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount).Div(decimal.NewFromInt(100)))
	return money.New(p.Div(factor).Round(2)), true
}

// DiscountBadge renders "{round(d)}% OFF", or "" when there is no discount.
func DiscountBadge(discount float64) string {
	if !(discount > 0) || math.IsInf(discount, 0) {
		return ""
	}
	return fmt.Sprintf("%d%% OFF", int64(math.Round(discount)))
}

// UnitPriceLabel renders the per-unit caption of a cart line.
func UnitPriceLabel(f *money.Formatter, price money.Amount) string {
	return f.Format(price) + " por unidade"
}
