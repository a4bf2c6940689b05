// Package money holds the storefront's monetary value type and its locale
// aware rendering.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Amount is a decimal value as received from the product API. When the
// upstream sends something that is not a number the raw text is kept so it can
// still be rendered; such an amount is not Valid. The zero value is a valid 0.
type Amount struct {
	value decimal.Decimal
	raw   string
	bad   bool
}

func New(d decimal.Decimal) Amount { return Amount{value: d} }

func FromInt(v int64) Amount { return Amount{value: decimal.NewFromInt(v)} }

func FromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Invalid(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return Amount{value: decimal.NewFromFloat(f)}
}

// Parse never fails; unparseable input becomes an invalid amount.
func Parse(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Invalid(s)
	}
	return Amount{value: d}
}

func Invalid(raw string) Amount { return Amount{raw: raw, bad: true} }

// Missing stands for a price the upstream left out. It renders as the literal
// "undefined" and poisons any sum it takes part in.
func Missing() Amount { return Invalid("undefined") }

func (a Amount) Valid() bool { return !a.bad }

func (a Amount) Decimal() (decimal.Decimal, bool) { return a.value, !a.bad }

// Raw is the upstream text for invalid amounts and the decimal text otherwise.
func (a Amount) Raw() string {
	if a.bad {
		return a.raw
	}
	return a.value.String()
}

func (a Amount) String() string { return a.Raw() }

// Mul scales the amount by a quantity. Invalid amounts stay invalid.
func (a Amount) Mul(n int) Amount {
	if a.bad {
		return Invalid("NaN")
	}
	return Amount{value: a.value.Mul(decimal.NewFromInt(int64(n)))}
}

func (a Amount) Add(b Amount) Amount {
	if a.bad || b.bad {
		return Invalid("NaN")
	}
	return Amount{value: a.value.Add(b.value)}
}

func (a Amount) Equal(b Amount) bool {
	if a.bad || b.bad {
		return a.bad == b.bad && a.raw == b.raw
	}
	return a.value.Equal(b.value)
}

func (a Amount) IsZero() bool { return !a.bad && a.value.IsZero() }

func (a Amount) Float64() (float64, bool) {
	if a.bad {
		return math.NaN(), false
	}
	return a.value.InexactFloat64(), true
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.bad {
		return json.Marshal(a.raw)
	}
	return []byte(a.value.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings. Other strings and null are
// kept as invalid amounts; objects, arrays and booleans are schema errors.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("money: empty amount")
	}

	switch data[0] {
	case 'n':
		*a = Invalid("null")
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("money: %w", err)
		}
		*a = Parse(s)
		return nil
	case '{', '[', 't', 'f':
		return fmt.Errorf("money: unexpected amount %s", data)
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*a = Amount{value: d}
	return nil
}
