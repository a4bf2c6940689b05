package present

import (
	"math"
	"strconv"
)

type Star string

const (
	StarFull  Star = "full"
	StarHalf  Star = "half"
	StarEmpty Star = "empty"
)

const MaxStars = 5

// Glyph is the text rendering of a star slot.
func (s Star) Glyph() string {
	switch s {
	case StarFull:
		return "★"
	case StarHalf:
		return "½"
	default:
		return "☆"
	}
}

func (s Star) MarshalText() ([]byte, error) { return []byte(s), nil }

// Stars fills floor(r) slots, then one half slot when r has a fractional part.
func Stars(r float64) []Star {
	r = clampRating(r)
	full := int(math.Floor(r))
	half := r != math.Floor(r)

	out := make([]Star, MaxStars)
	for i := range out {
		switch {
		case i < full:
			out[i] = StarFull
		case i == full && half:
			out[i] = StarHalf
		default:
			out[i] = StarEmpty
		}
	}
	return out
}

// ReviewStars is the review-card variant: full or empty only.
func ReviewStars(r float64) []Star {
	full := int(math.Floor(clampRating(r)))
	out := make([]Star, MaxStars)
	for i := range out {
		if i < full {
			out[i] = StarFull
		} else {
			out[i] = StarEmpty
		}
	}
	return out
}

// RatingLabel renders " (4.5 / 5)".
func RatingLabel(r float64) string {
	return " (" + strconv.FormatFloat(r, 'f', -1, 64) + " / 5)"
}

func StarGlyphs(stars []Star) string {
	var b []byte
	for _, s := range stars {
		b = append(b, s.Glyph()...)
	}
	return string(b)
}

func clampRating(r float64) float64 {
	switch {
	case math.IsNaN(r) || r < 0:
		return 0
	case r > MaxStars:
		return MaxStars
	default:
		return r
	}
}
