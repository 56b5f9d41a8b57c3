package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"buymore_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	products   []models.Product
	categories []models.Category
	promos     []models.Promotion
	failPromos bool
	calls      atomic.Int32
}

func (f *fakeSource) ListProducts(context.Context) ([]models.Product, error) {
	f.calls.Add(1)
	return f.products, nil
}

func (f *fakeSource) ListCategories(context.Context) ([]models.Category, error) {
	f.calls.Add(1)
	return f.categories, nil
}

func (f *fakeSource) ListPromotions(context.Context) ([]models.Promotion, error) {
	f.calls.Add(1)
	if f.failPromos {
		return nil, errors.New("timeout")
	}
	return f.promos, nil
}

type fakeSearch struct {
	ids []gocql.UUID
	err error
}

func (f fakeSearch) Enabled() bool { return true }

func (f fakeSearch) SearchProductIDs(context.Context, string) ([]gocql.UUID, error) {
	return f.ids, f.err
}

func fixture() *fakeSource {
	lanches := models.Category{ID: gocql.TimeUUID(), Name: "Lanches"}
	bebidas := models.Category{ID: gocql.TimeUUID(), Name: "Bebidas", Type: models.CategorySupermarket}
	leite := models.Category{ID: gocql.TimeUUID(), Name: "Leite Condensado"}

	hotdog := models.Product{ID: gocql.TimeUUID(), Name: "Cachorro Quente", Price: decimal.NewFromInt(12), CategoryID: lanches.ID}
	refri := models.Product{ID: gocql.TimeUUID(), Name: "Refrigerante", Price: decimal.NewFromInt(8), CategoryID: bebidas.ID}
	moca := models.Product{ID: gocql.TimeUUID(), Name: "Moça", Price: decimal.NewFromInt(9), CategoryID: leite.ID}
	orphan := models.Product{ID: gocql.TimeUUID(), Name: "Sem categoria", Price: decimal.NewFromInt(1)}

	return &fakeSource{
		products:   []models.Product{hotdog, refri, moca, orphan},
		categories: []models.Category{lanches, bebidas, leite},
		promos: []models.Promotion{
			{ID: gocql.TimeUUID(), Title: "2 refris", IsActive: true, Offer: models.ProductBundle{ProductID: refri.ID, Quantity: 2, SpecialPrice: decimal.NewFromInt(14)}},
			{ID: gocql.TimeUUID(), Title: "10% off", IsActive: true, Offer: models.PercentageDiscount{Percentage: decimal.NewFromInt(10)}},
			{ID: gocql.TimeUUID(), Title: "desligada", IsActive: false, Offer: models.PercentageDiscount{Percentage: decimal.NewFromInt(5)}},
		},
	}
}

func names(ps []models.Product) []string {
	out := []string{}
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestLoad_SplitsLivePromotions(t *testing.T) {
	src := fixture()
	snap, err := NewLoader(src, nil, nil).Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Products, 4)
	assert.Len(t, snap.Bundles, 1)
	assert.Len(t, snap.Banners, 1)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestLoad_AnyFailureFailsWhole(t *testing.T) {
	src := fixture()
	src.failPromos = true
	_, err := NewLoader(src, nil, nil).Load(context.Background())
	assert.Error(t, err)
}

func TestFilter_Tabs(t *testing.T) {
	src := fixture()
	snap := NewSnapshot(src.products, src.categories, src.promos, time.Now())

	assert.Equal(t, []string{"Cachorro Quente"}, names(snap.Filter(Filter{Tab: TabSnacks, CategoryID: AllCategories})))
	assert.Equal(t, []string{"Refrigerante", "Moça", "Sem categoria"}, names(snap.Filter(Filter{Tab: TabSupermarket})))
	assert.Len(t, snap.Filter(Filter{Tab: TabPromotions}), 4)

	assert.Len(t, snap.CategoriesFor(TabSnacks), 1)
	assert.Len(t, snap.CategoriesFor(TabSupermarket), 2)
}

func TestFilter_CategoryAndSearch(t *testing.T) {
	src := fixture()
	snap := NewSnapshot(src.products, src.categories, src.promos, time.Now())
	bebidas := src.categories[1].ID.String()

	assert.Equal(t, []string{"Refrigerante"}, names(snap.Filter(Filter{Tab: TabPromotions, CategoryID: bebidas})))
	assert.Equal(t, []string{"Cachorro Quente"}, names(snap.Filter(Filter{Tab: TabPromotions, Search: "QUENTE"})))
	assert.Empty(t, snap.Filter(Filter{Tab: TabSnacks, Search: "refri"}))
}

func TestSearch_ElasticOrdersSubstringMatches(t *testing.T) {
	src := fixture()
	snap := NewSnapshot(src.products, src.categories, src.promos, time.Now())
	hotdog, refri, moca := src.products[0], src.products[1], src.products[2]

	// "Moça" é um acerto aproximado do Elastic sem o texto; "Sem categoria"
	// contém o texto mas ficou fora da resposta.
	l := NewLoader(src, nil, fakeSearch{ids: []gocql.UUID{refri.ID, gocql.TimeUUID(), moca.ID, hotdog.ID}})
	got := l.Search(context.Background(), snap, Filter{Tab: TabPromotions, Search: "E"})
	assert.Equal(t, []string{"Refrigerante", "Cachorro Quente", "Sem categoria"}, names(got))

	got = l.Search(context.Background(), snap, Filter{Tab: TabSnacks, Search: "e"})
	assert.Equal(t, []string{"Cachorro Quente"}, names(got))

	assert.Empty(t, l.Search(context.Background(), snap, Filter{Tab: TabPromotions, Search: "qualquer"}))
}

func TestSearch_FallsBackWhenElasticFails(t *testing.T) {
	src := fixture()
	snap := NewSnapshot(src.products, src.categories, src.promos, time.Now())

	l := NewLoader(src, nil, fakeSearch{err: errors.New("down")})
	got := l.Search(context.Background(), snap, Filter{Tab: TabPromotions, Search: "e"})
	assert.Equal(t, []string{"Cachorro Quente", "Refrigerante", "Sem categoria"}, names(got))
}

func TestParseTab(t *testing.T) {
	assert.Equal(t, TabSnacks, ParseTab("snacks"))
	assert.Equal(t, TabSupermarket, ParseTab("SUPERMARKET"))
	assert.Equal(t, TabPromotions, ParseTab(""))
}
