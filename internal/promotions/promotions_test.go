package promotions

import (
	"testing"
	"time"

	"buymore_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func bundle(qty int, special string) models.Promotion {
	return models.Promotion{
		ID:       gocql.TimeUUID(),
		Title:    "Combo",
		IsActive: true,
		Offer:    models.ProductBundle{ProductID: gocql.TimeUUID(), Quantity: qty, SpecialPrice: decimal.RequireFromString(special)},
	}
}

func percentage(pct string) models.Promotion {
	return models.Promotion{
		ID:       gocql.TimeUUID(),
		Title:    "Semana do cliente",
		IsActive: true,
		Offer:    models.PercentageDiscount{Percentage: decimal.RequireFromString(pct)},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(bundle(3, "20.00")))
	assert.NoError(t, Validate(percentage("100")))
	assert.NoError(t, Validate(percentage("0.5")))

	assert.ErrorIs(t, Validate(bundle(0, "20.00")), ErrInvalid)
	assert.ErrorIs(t, Validate(bundle(2, "0")), ErrInvalid)
	assert.ErrorIs(t, Validate(percentage("0")), ErrInvalid)
	assert.ErrorIs(t, Validate(percentage("100.01")), ErrInvalid)

	noProduct := bundle(2, "10")
	noProduct.Offer = models.ProductBundle{Quantity: 2, SpecialPrice: decimal.NewFromInt(10)}
	assert.ErrorIs(t, Validate(noProduct), ErrInvalid)

	noOffer := models.Promotion{Title: "x"}
	assert.ErrorIs(t, Validate(noOffer), ErrInvalid)

	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	bad := percentage("10")
	bad.StartDate, bad.EndDate = &start, &end
	assert.ErrorIs(t, Validate(bad), ErrInvalid)
}

func TestDiscountPercent(t *testing.T) {
	d := decimal.RequireFromString
	assert.Equal(t, 17, DiscountPercent(d("8.00"), d("20.00"), 3))
	assert.Equal(t, 25, DiscountPercent(d("10.00"), d("15.00"), 2))
	assert.Equal(t, 0, DiscountPercent(d("10.00"), d("10.00"), 1))
	assert.Equal(t, 0, DiscountPercent(d("0"), d("10.00"), 1))
}

func TestIsLiveAndSplit(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)

	live := bundle(2, "10")
	live.StartDate, live.EndDate = &before, &after

	future := percentage("10")
	future.StartDate = &after

	expired := bundle(2, "10")
	expired.EndDate = &before

	inactive := percentage("15")
	inactive.IsActive = false

	banner := percentage("20")

	assert.True(t, IsLive(live, now))
	assert.False(t, IsLive(future, now))
	assert.False(t, IsLive(expired, now))
	assert.False(t, IsLive(inactive, now))

	bundles, standalone := Split([]models.Promotion{live, future, expired, inactive, banner}, now)
	assert.Len(t, bundles, 1)
	assert.Len(t, standalone, 1)
	assert.Equal(t, banner.ID, standalone[0].ID)
}
