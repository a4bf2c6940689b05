package screens

import (
	"sync"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/present"
)

// DetailsScreen renders one product. It never fetches; its only state is the
// review pagination toggle and the favorite flag.
type DetailsScreen struct {
	product   catalog.Product
	formatter *money.Formatter
	shareBase string

	mu              sync.Mutex
	reviewsExpanded bool
	favorite        bool
}

func NewDetailsScreen(p catalog.Product, formatter *money.Formatter, shareBase string) *DetailsScreen {
	return &DetailsScreen{product: p, formatter: formatter, shareBase: shareBase}
}

func (d *DetailsScreen) Product() catalog.Product { return d.product }

func (d *DetailsScreen) ToggleReviews() {
	d.mu.Lock()
	d.reviewsExpanded = !d.reviewsExpanded
	d.mu.Unlock()
}

func (d *DetailsScreen) ToggleFavorite() {
	d.mu.Lock()
	d.favorite = !d.favorite
	d.mu.Unlock()
}

type RatingView struct {
	Value  float64        `json:"value"`
	Stars  []present.Star `json:"stars"`
	Glyphs string         `json:"glyphs"`
	Label  string         `json:"label"`
}

type ShareView struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

type DetailsView struct {
	ID               int                  `json:"id"`
	Title            string               `json:"title"`
	Brand            string               `json:"brand,omitempty"`
	Favorite         bool                 `json:"favorite"`
	Price            string               `json:"price"`
	OriginalPrice    string               `json:"originalPrice,omitempty"`
	Images           present.ImagesView   `json:"images"`
	Rating           *RatingView          `json:"rating,omitempty"`
	DescriptionLabel string               `json:"descriptionLabel"`
	Description      string               `json:"description"`
	SpecsTitle       string               `json:"specsTitle"`
	Specs            []present.SpecRow    `json:"specs"`
	Stock            string               `json:"stock"`
	InStock          bool                 `json:"inStock"`
	AddToCart        string               `json:"addToCart"`
	Reviews          *present.ReviewsPage `json:"reviews,omitempty"`
	Share            ShareView            `json:"share"`
}

func (d *DetailsScreen) View() DetailsView {
	d.mu.Lock()
	expanded, favorite := d.reviewsExpanded, d.favorite
	d.mu.Unlock()

	p := d.product
	v := DetailsView{
		ID:               p.ID,
		Title:            p.Title,
		Brand:            present.BrandLabel(p.Brand),
		Favorite:         favorite,
		Price:            d.formatter.Format(p.Price),
		Images:           present.Images(p.Images, p.Discount()),
		DescriptionLabel: present.DescriptionLabel,
		Description:      p.Description,
		SpecsTitle:       present.SpecsTitle,
		Specs:            present.SpecRows(p),
		Stock:            present.StockLabel(p.Stock),
		InStock:          p.InStock(),
		AddToCart:        present.AddToCartLabel,
	}
	if original, ok := present.OriginalPrice(p.Price, p.Discount()); ok {
		v.OriginalPrice = d.formatter.Format(original)
	}
	if p.Rating != nil {
		stars := present.Stars(*p.Rating)
		v.Rating = &RatingView{
			Value:  *p.Rating,
			Stars:  stars,
			Glyphs: present.StarGlyphs(stars),
			Label:  present.RatingLabel(*p.Rating),
		}
	}
	if len(p.Reviews) > 0 {
		page := present.PageReviews(p.Reviews, expanded)
		v.Reviews = &page
	}

	link := present.ShareURL(d.shareBase, p.ID)
	v.Share = ShareView{Title: present.ShareTitle, URL: link, Message: present.ShareMessage(p.Title, link)}
	return v
}
