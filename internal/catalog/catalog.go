// Package catalog carrega produtos, categorias e promoções vigentes e aplica
// os filtros da vitrine.
package catalog

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"buymore_back_end/internal/cache"
	"buymore_back_end/internal/models"
	"buymore_back_end/internal/promotions"

	"github.com/gocql/gocql"
	"golang.org/x/sync/errgroup"
)

// Tab é a aba da vitrine.
type Tab string

const (
	TabPromotions  Tab = "promotions"
	TabSnacks      Tab = "snacks"
	TabSupermarket Tab = "supermarket"

	AllCategories = "all"
)

func ParseTab(s string) Tab {
	switch Tab(strings.ToLower(s)) {
	case TabSnacks:
		return TabSnacks
	case TabSupermarket:
		return TabSupermarket
	}
	return TabPromotions
}

// Source é a parte do store que o catálogo lê.
type Source interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListPromotions(ctx context.Context) ([]models.Promotion, error)
}

type Searcher interface {
	Enabled() bool
	SearchProductIDs(ctx context.Context, query string) ([]gocql.UUID, error)
}

type Loader struct {
	src    Source
	cache  *cache.CatalogCache
	search Searcher
	now    func() time.Time
}

// NewLoader aceita cache e search nil.
func NewLoader(src Source, cc *cache.CatalogCache, search Searcher) *Loader {
	return &Loader{src: src, cache: cc, search: search, now: time.Now}
}

// Snapshot é o catálogo como a vitrine vê num dado momento.
type Snapshot struct {
	Products   []models.Product   `json:"products"`
	Categories []models.Category  `json:"categories"`
	Bundles    []models.Promotion `json:"bundles"`
	Banners    []models.Promotion `json:"banners"`

	categoryByID map[gocql.UUID]models.Category
	productByID  map[gocql.UUID]models.Product
}

// Load busca as três listas em paralelo; qualquer falha cancela as outras.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	var (
		products   []models.Product
		categories []models.Category
		promos     []models.Promotion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = l.cache.Products(gctx, l.src.ListProducts)
		if err != nil {
			return fmt.Errorf("produtos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = l.cache.Categories(gctx, l.src.ListCategories)
		if err != nil {
			return fmt.Errorf("categorias: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		promos, err = l.cache.Promotions(gctx, l.src.ListPromotions)
		if err != nil {
			return fmt.Errorf("promoções: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("erro ao carregar catálogo: %w", err)
	}

	return NewSnapshot(products, categories, promos, l.now()), nil
}

func NewSnapshot(products []models.Product, categories []models.Category, promos []models.Promotion, now time.Time) *Snapshot {
	s := &Snapshot{
		Products:     products,
		Categories:   categories,
		categoryByID: make(map[gocql.UUID]models.Category, len(categories)),
		productByID:  make(map[gocql.UUID]models.Product, len(products)),
	}
	for _, c := range categories {
		s.categoryByID[c.ID] = c
	}
	for _, p := range products {
		s.productByID[p.ID] = p
	}
	s.Bundles, s.Banners = promotions.Split(promos, now)
	return s
}

func (s *Snapshot) Product(id gocql.UUID) (models.Product, bool) {
	p, ok := s.productByID[id]
	return p, ok
}

func (s *Snapshot) Promotion(id gocql.UUID) (models.Promotion, bool) {
	for _, p := range s.Bundles {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range s.Banners {
		if p.ID == id {
			return p, true
		}
	}
	return models.Promotion{}, false
}

// isSnack: produto sem categoria conhecida conta como mercado.
func (s *Snapshot) isSnack(p models.Product) bool {
	c, ok := s.categoryByID[p.CategoryID]
	return ok && c.EffectiveType() == models.CategorySnacks
}

// CategoriesFor lista as categorias do seletor de cada aba.
func (s *Snapshot) CategoriesFor(tab Tab) []models.Category {
	if tab == TabPromotions {
		return s.Categories
	}
	want := models.CategorySupermarket
	if tab == TabSnacks {
		want = models.CategorySnacks
	}
	var out []models.Category
	for _, c := range s.Categories {
		if c.EffectiveType() == want {
			out = append(out, c)
		}
	}
	return out
}

type Filter struct {
	Tab        Tab
	CategoryID string
	Search     string
}

// Filter aplica aba, categoria e busca por substring (sem diferenciar
// maiúsculas).
func (s *Snapshot) Filter(f Filter) []models.Product {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := []models.Product{}
	for _, p := range s.Products {
		if !s.matchesTabAndCategory(p, f) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Snapshot) matchesTabAndCategory(p models.Product, f Filter) bool {
	if f.CategoryID != "" && f.CategoryID != AllCategories && p.CategoryID.String() != f.CategoryID {
		return false
	}
	switch f.Tab {
	case TabSnacks:
		return s.isSnack(p)
	case TabSupermarket:
		return !s.isSnack(p)
	}
	return true
}

// Search devolve sempre o mesmo conjunto do filtro por substring. Quando o
// Elasticsearch responde, ele só decide a ordem: os acertos ranqueados vêm
// primeiro e o resto segue na ordem do catálogo. Acertos aproximados do Elastic
// que não contêm o texto ficam de fora.
func (l *Loader) Search(ctx context.Context, snap *Snapshot, f Filter) []models.Product {
	matches := snap.Filter(f)
	query := strings.TrimSpace(f.Search)
	if query == "" || len(matches) < 2 || l.search == nil || !l.search.Enabled() {
		return matches
	}

	ids, err := l.search.SearchProductIDs(ctx, query)
	if err != nil {
		log.Printf("⚠️ Busca no Elastic falhou, usando substring: %v", err)
		return matches
	}

	rank := make(map[gocql.UUID]int, len(ids))
	for i, id := range ids {
		if _, seen := rank[id]; !seen {
			rank[id] = i
		}
	}
	slices.SortStableFunc(matches, func(a, b models.Product) int {
		ra, okA := rank[a.ID]
		rb, okB := rank[b.ID]
		switch {
		case okA && okB:
			return ra - rb
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
	return matches
}
