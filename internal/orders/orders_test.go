package orders

import (
	"context"
	"testing"
	"time"

	"buymore_back_end/internal/models"
	"buymore_back_end/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ events []models.OrderEvent }

func (r *recorder) PublishOrderEvent(_ context.Context, ev models.OrderEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func seed(t *testing.T, m *store.Memory, n int, phone string) []models.Order {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	var out []models.Order
	for i := 0; i < n; i++ {
		o := &models.Order{
			CustomerName:  "Ana",
			CustomerPhone: phone,
			CustomerEmail: "ana@example.com",
			Total:         decimal.NewFromInt(int64(10 + i)),
			Status:        models.StatusPending,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, m.InsertOrder(ctx, o))
		require.NoError(t, m.InsertOrderItems(ctx, o.ID, []models.OrderItem{{Name: "Arroz", Quantity: 1, Price: o.Total}}))
		out = append(out, *o)
	}
	return out
}

func TestPresent(t *testing.T) {
	assert.Equal(t, "Pendente", Present(models.StatusPending).Label)
	assert.Equal(t, "Em Produção", Present(models.StatusPreparing).Label)
	assert.Equal(t, models.StatusInProduction, Present(models.StatusPreparing).Status)
	assert.Equal(t, "Pronto", Present(models.StatusOutForDelivery).Label)
	assert.Equal(t, "Entregue", Present(models.StatusDelivered).Label)
	assert.Equal(t, "Cancelado", Present(models.StatusCancelled).Label)

	unknown := Present("shipped_by_drone")
	assert.Equal(t, "Pendente", unknown.Label)
	assert.Equal(t, "bg-yellow-500", unknown.Color)
}

func TestViewer_ByPhoneLimitsToTenNewestFirst(t *testing.T) {
	m := store.NewMemory()
	seed(t, m, 12, "11999990000")
	seed(t, m, 2, "11888880000")

	views, err := NewViewer(m).ByPhone(context.Background(), "11999990000")
	require.NoError(t, err)
	require.Len(t, views, PhoneLimit)
	assert.True(t, views[0].Total.Equal(decimal.NewFromInt(21)))
	assert.Len(t, views[0].Items, 1)
	assert.Equal(t, "Pendente", views[0].Presentation.Label)
}

func TestViewer_ByEmailUnbounded(t *testing.T) {
	m := store.NewMemory()
	seed(t, m, 12, "11999990000")

	views, err := NewViewer(m).ByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, views, 12)

	_, err = NewViewer(m).ByEmail(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestAdmin_UpdateStatusPublishes(t *testing.T) {
	m := store.NewMemory()
	orders := seed(t, m, 1, "11999990000")
	rec := &recorder{}
	admin := NewAdmin(m, rec)
	ctx := context.Background()

	require.NoError(t, admin.UpdateStatus(ctx, orders[0].ID, models.StatusAccepted))
	require.Len(t, rec.events, 1)
	assert.Equal(t, "status_changed", rec.events[0].Type)

	err := admin.UpdateStatus(ctx, orders[0].ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Len(t, rec.events, 1)

	list, err := admin.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusAccepted, list[0].Status)
}
