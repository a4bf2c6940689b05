package screens

import (
	"context"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/present"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/viewstate"
)

type CatalogScreen struct {
	*viewstate.Screen[[]catalog.Product]
	formatter *money.Formatter
}

func NewCatalogScreen(api StoreAPI, limit int, formatter *money.Formatter, logger *zap.Logger) *CatalogScreen {
	if limit <= 0 {
		limit = DefaultCatalogLimit
	}
	fetch := func(ctx context.Context) ([]catalog.Product, error) {
		return api.FetchCatalog(ctx, limit)
	}
	return &CatalogScreen{
		Screen:    viewstate.New("catalog", fetch, logger),
		formatter: formatter,
	}
}

// Focus is called when the screen regains focus. The reload joins any
// request already in flight.
func (c *CatalogScreen) Focus(ctx context.Context) <-chan struct{} {
	if !c.Mounted() {
		return c.Enter(ctx)
	}
	done, _ := c.Trigger(ctx)
	return done
}

// Product returns the loaded product with id, used as the details payload.
func (c *CatalogScreen) Product(id int) (catalog.Product, bool) {
	st := c.State()
	if st.Phase != viewstate.Ready {
		return catalog.Product{}, false
	}
	for _, p := range st.Data {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

type CatalogItem struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Price     string `json:"price"`
}

type CatalogView struct {
	Phase   viewstate.Phase `json:"phase"`
	Loading string          `json:"loading,omitempty"`
	Items   []CatalogItem   `json:"items"`
	Empty   bool            `json:"empty"`
	Error   *ErrorView      `json:"error,omitempty"`
}

func (c *CatalogScreen) View() CatalogView {
	return c.render(c.State())
}

func (c *CatalogScreen) render(st viewstate.State[[]catalog.Product]) CatalogView {
	v := CatalogView{Phase: st.Phase, Items: []CatalogItem{}}
	switch st.Phase {
	case viewstate.Loading:
		v.Loading = present.CatalogLoading
	case viewstate.Failed:
		v.Error = errorView(present.CatalogError, present.RetryLabel, st.Err)
	case viewstate.Ready:
		for _, p := range st.Data {
			v.Items = append(v.Items, CatalogItem{
				ID:        p.ID,
				Title:     p.Title,
				Thumbnail: p.Thumbnail,
				Price:     c.formatter.Format(p.Price),
			})
		}
		v.Empty = len(v.Items) == 0
	}
	return v
}
