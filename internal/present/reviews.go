package present

import (
	"fmt"
	"unicode/utf8"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

// InitialReviews is how many reviews are shown before the toggle is used.
const InitialReviews = 2

type ReviewView struct {
	ReviewerName string  `json:"reviewerName"`
	Comment      string  `json:"comment"`
	Date         string  `json:"date"`
	Rating       float64 `json:"rating"`
	Stars        []Star  `json:"stars"`
}

type ReviewsPage struct {
	Title    string       `json:"title"`
	Total    int          `json:"total"`
	Shown    []ReviewView `json:"shown"`
	Expanded bool         `json:"expanded"`
	// Toggle is empty when every review fits on the first page.
	Toggle string `json:"toggle,omitempty"`
}

// PageReviews shows the first InitialReviews reviews, or all of them when
// expanded. The input slice is not modified.
func PageReviews(reviews []catalog.Review, expanded bool) ReviewsPage {
	total := len(reviews)
	page := ReviewsPage{
		Title:    fmt.Sprintf("Avaliações dos Clientes (%d)", total),
		Total:    total,
		Expanded: expanded,
		Shown:    []ReviewView{},
	}

	visible := reviews
	if !expanded && total > InitialReviews {
		visible = reviews[:InitialReviews]
	}
	for _, r := range visible {
		page.Shown = append(page.Shown, ReviewView{
			ReviewerName: r.ReviewerName,
			Comment:      r.Comment,
			Date:         ReviewDate(r.Date),
			Rating:       r.Rating,
			Stars:        ReviewStars(r.Rating),
		})
	}

	if total > InitialReviews {
		if expanded {
			page.Toggle = ShowLessReviews
		} else {
			page.Toggle = fmt.Sprintf("Mostrar mais (%d) avaliações ▼", total-InitialReviews)
		}
	}
	return page
}

// ReviewDate keeps the YYYY-MM-DD prefix of an ISO-8601 timestamp. Input
// whose tenth byte falls inside a rune is returned as is.
func ReviewDate(iso string) string {
	if len(iso) <= 10 || !utf8.RuneStart(iso[10]) {
		return iso
	}
	return iso[:10]
}
