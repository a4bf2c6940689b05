package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultLocale   = "pt-BR"
	DefaultCurrency = "BRL"
)

// Formatter renders amounts in a locale's currency format. It is safe for
// concurrent use.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
}

func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}

	p := message.NewPrinter(tag)
	return &Formatter{
		printer: p,
		unit:    unit,
		symbol:  p.Sprint(currency.Symbol(unit)),
	}, nil
}

// DefaultFormatter formats Brazilian reais.
func DefaultFormatter() *Formatter {
	f, err := NewFormatter(DefaultLocale, DefaultCurrency)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Formatter) Symbol() string { return f.symbol }

// Format renders v as currency. Anything that is not a finite number renders as
// the symbol followed by the raw value; Format never fails.
func (f *Formatter) Format(v any) string {
	switch x := v.(type) {
	case Amount:
		if d, ok := x.Decimal(); ok {
			return f.formatFloat(d.InexactFloat64())
		}
		return f.Fallback(x.Raw())
	case *Amount:
		if x == nil {
			return f.Fallback("null")
		}
		return f.Format(*x)
	case decimal.Decimal:
		return f.formatFloat(x.InexactFloat64())
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return f.Fallback(FromFloat(x).Raw())
		}
		return f.formatFloat(x)
	case float32:
		return f.Format(float64(x))
	case int:
		return f.formatFloat(float64(x))
	case int64:
		return f.formatFloat(float64(x))
	case nil:
		return f.Fallback("null")
	default:
		return f.Fallback(fmt.Sprint(x))
	}
}

func (f *Formatter) Fallback(raw string) string {
	return f.symbol + " " + raw
}

func (f *Formatter) formatFloat(v float64) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(v)))
}
