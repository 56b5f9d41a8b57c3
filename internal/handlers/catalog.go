package handlers

import (
	"log"
	"net/http"

	"buymore_back_end/internal/catalog"
	"buymore_back_end/internal/promotions"

	"github.com/gin-gonic/gin"
)

// GetCatalog devolve produtos filtrados por aba, categoria e busca, além das
// categorias da aba e das promoções vigentes.
func (a *API) GetCatalog(c *gin.Context) {
	snap, err := a.Catalog.Load(c.Request.Context())
	if err != nil {
		log.Printf("❌ %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tab := catalog.ParseTab(c.Query("tab"))
	f := catalog.Filter{
		Tab:        tab,
		CategoryID: c.DefaultQuery("category", catalog.AllCategories),
		Search:     c.Query("q"),
	}

	c.JSON(http.StatusOK, gin.H{
		"tab":        tab,
		"products":   a.Catalog.Search(c.Request.Context(), snap, f),
		"categories": snap.CategoriesFor(tab),
		"bundles":    bundleViews(snap),
		"banners":    snap.Banners,
	})
}

type bundleView struct {
	PromotionID     string `json:"promotion_id"`
	Title           string `json:"title"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	Quantity        int    `json:"quantity"`
	SpecialPrice    string `json:"special_price"`
	OriginalPrice   string `json:"original_price"`
	DiscountPercent int    `json:"discount_percent"`
	ImageURL        string `json:"image_url,omitempty"`
}

// bundleViews junta cada combo ao produto para a vitrine mostrar o "de/por".
func bundleViews(snap *catalog.Snapshot) []bundleView {
	out := []bundleView{}
	for _, promo := range snap.Bundles {
		b, ok := promotions.Bundle(promo)
		if !ok {
			continue
		}
		p, ok := snap.Product(b.ProductID)
		if !ok {
			continue
		}
		img := promo.ImageURL
		if img == "" {
			img = p.ImageURL
		}
		out = append(out, bundleView{
			PromotionID:     promo.ID.String(),
			Title:           promo.Title,
			ProductID:       p.ID.String(),
			ProductName:     p.Name,
			Quantity:        b.Quantity,
			SpecialPrice:    b.SpecialPrice.StringFixed(2),
			OriginalPrice:   p.Price.StringFixed(2),
			DiscountPercent: promotions.DiscountPercent(p.Price, b.SpecialPrice, b.Quantity),
			ImageURL:        img,
		})
	}
	return out
}

func (a *API) GetProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	snap, err := a.Catalog.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	p, found := snap.Product(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produto não encontrado"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetBanner informa se o visitante já fechou o banner de promoções.
func (a *API) GetBanner(c *gin.Context) {
	closed, _ := a.cookieSession(c).Values[cookieBannerOff].(bool)
	c.JSON(http.StatusOK, gin.H{"closed": closed})
}

func (a *API) CloseBanner(c *gin.Context) {
	s := a.cookieSession(c)
	s.Values[cookieBannerOff] = true
	a.saveCookie(c, s)
	c.JSON(http.StatusOK, gin.H{"closed": true})
}
