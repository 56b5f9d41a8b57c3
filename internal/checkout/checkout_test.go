package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"buymore_back_end/internal/cart"
	"buymore_back_end/internal/models"
	"buymore_back_end/internal/store"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrders conta as chamadas e pode falhar em cada etapa.
type fakeOrders struct {
	mu          sync.Mutex
	headerCalls int
	itemsCalls  int
	headerErr   error
	itemsErr    error
	headers     []models.Order
	items       map[gocql.UUID][]models.OrderItem
}

func (f *fakeOrders) InsertOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headerCalls++
	if f.headerErr != nil {
		return f.headerErr
	}
	o.ID = gocql.TimeUUID()
	f.headers = append(f.headers, *o)
	return nil
}

func (f *fakeOrders) InsertOrderItems(_ context.Context, id gocql.UUID, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemsCalls++
	if f.itemsErr != nil {
		return f.itemsErr
	}
	if f.items == nil {
		f.items = map[gocql.UUID][]models.OrderItem{}
	}
	f.items[id] = items
	return nil
}

type fakeNotifier struct {
	err   error
	calls int
}

func (n *fakeNotifier) NotifyOrder(context.Context, models.Order) error {
	n.calls++
	return n.err
}

var saoPaulo = time.FixedZone("BRT", -3*3600)

func testSchedule() Schedule {
	return Schedule{
		Days:         5,
		IncludeToday: true,
		Slots:        []string{"08:00", "10:00", "14:00", "16:00", "18:00"},
		Buffer:       30 * time.Minute,
		Location:     saoPaulo,
	}
}

func lines(t *testing.T) []cart.Line {
	t.Helper()
	var c cart.Cart
	_, err := c.Add(models.Product{ID: gocql.TimeUUID(), Name: "Arroz", Price: decimal.RequireFromString("10.00")}, 2, nil, "")
	require.NoError(t, err)
	_, err = c.Add(models.Product{ID: gocql.TimeUUID(), Name: "Feijão", Price: decimal.RequireFromString("5.50")}, 1, nil, "")
	require.NoError(t, err)
	return c.Snapshot()
}

func deliveryForm() Form {
	return Form{
		CustomerName:  "Ana",
		CustomerPhone: "11999990000",
		Address:       "Casa 3 - Quarto 12",
		PaymentMethod: "pix",
	}
}

func newComposer(orders store.OrderWriter, n *fakeNotifier, now time.Time) *Composer {
	c := NewComposer(orders, n, testSchedule(), nil)
	c.now = func() time.Time { return now }
	return c
}

// segunda-feira, 10h em São Paulo
var monday = time.Date(2026, 3, 2, 10, 0, 0, 0, saoPaulo)

func TestSubmit_DeliveryHappyPath(t *testing.T) {
	orders := &fakeOrders{}
	n := &fakeNotifier{}
	c := newComposer(orders, n, monday)

	var created []models.Order
	c.OnCreated(func(_ context.Context, o models.Order) { created = append(created, o) })

	flow := c.Open(models.OrderDelivery, Customer{})
	require.NoError(t, flow.Fill(deliveryForm()))

	cleared := false
	res, err := flow.Submit(context.Background(), lines(t), func(context.Context) error {
		cleared = true
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, flow.State())
	assert.True(t, cleared)
	assert.Empty(t, res.Warning)
	assert.True(t, res.Order.Total.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, models.StatusPending, res.Order.Status)
	assert.Equal(t, DefaultEmail, res.Order.CustomerEmail)
	assert.Equal(t, models.PaymentPix, res.Order.PaymentMethod)
	assert.Len(t, orders.items[res.Order.ID], 2)
	assert.Equal(t, 1, n.calls)
	require.Len(t, created, 1)
	assert.Nil(t, res.Pix)
}

func TestSubmit_PaymentUnsetBlocksWithoutStoreCall(t *testing.T) {
	orders := &fakeOrders{}
	c := newComposer(orders, &fakeNotifier{}, monday)
	flow := c.Open(models.OrderDelivery, Customer{})

	form := deliveryForm()
	form.PaymentMethod = ""
	require.NoError(t, flow.Fill(form))

	cleared := false
	_, err := flow.Submit(context.Background(), lines(t), func(context.Context) error {
		cleared = true
		return nil
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{FieldPayment}, verr.Missing)
	assert.Equal(t, 0, orders.headerCalls)
	assert.Equal(t, 0, orders.itemsCalls)
	assert.False(t, cleared)
	assert.Equal(t, StateCollecting, flow.State())
}

func TestSubmit_ReportsEveryMissingField(t *testing.T) {
	orders := &fakeOrders{}
	c := newComposer(orders, &fakeNotifier{}, monday)
	flow := c.Open(models.OrderDelivery, Customer{})

	_, err := flow.Submit(context.Background(), nil, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{FieldCart, FieldName, FieldPhone, FieldAddress, FieldPayment}, verr.Missing)
	assert.Equal(t, 0, orders.headerCalls)
}

func TestSubmit_HeaderFails(t *testing.T) {
	orders := &fakeOrders{headerErr: errors.New("timeout")}
	c := newComposer(orders, &fakeNotifier{}, monday)
	flow := c.Open(models.OrderDelivery, Customer{})
	require.NoError(t, flow.Fill(deliveryForm()))

	cleared := false
	_, err := flow.Submit(context.Background(), lines(t), func(context.Context) error {
		cleared = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, StateFailed, flow.State())
	assert.Equal(t, 0, orders.itemsCalls)
	assert.False(t, cleared)
}

func TestSubmit_ItemsFailLeavesHeaderWithoutItems(t *testing.T) {
	orders := &fakeOrders{itemsErr: errors.New("batch too large")}
	n := &fakeNotifier{}
	c := newComposer(orders, n, monday)
	flow := c.Open(models.OrderDelivery, Customer{})
	require.NoError(t, flow.Fill(deliveryForm()))

	cleared := false
	res, err := flow.Submit(context.Background(), lines(t), func(context.Context) error {
		cleared = true
		return nil
	})
	require.ErrorIs(t, err, ErrItemsNotSaved)
	assert.Contains(t, err.Error(), "batch too large")
	assert.Equal(t, StateFailed, flow.State())

	require.Len(t, orders.headers, 1)
	assert.True(t, orders.headers[0].Total.Equal(decimal.RequireFromString("25.50")))
	assert.Empty(t, orders.items)
	assert.Equal(t, orders.headers[0].ID, res.Order.ID)
	assert.Equal(t, 0, n.calls)
	assert.False(t, cleared)
}

func TestSubmit_NotificationFailureIsWarning(t *testing.T) {
	orders := &fakeOrders{}
	c := newComposer(orders, &fakeNotifier{err: errors.New("502")}, monday)
	flow := c.Open(models.OrderDelivery, Customer{})
	require.NoError(t, flow.Fill(deliveryForm()))

	res, err := flow.Submit(context.Background(), lines(t), nil)
	require.NoError(t, err)
	assert.Equal(t, NotifyWarning, res.Warning)
	assert.Equal(t, StateCompleted, flow.State())
}

func TestSubmit_AfterCloseIsRejected(t *testing.T) {
	orders := &fakeOrders{}
	c := newComposer(orders, &fakeNotifier{}, monday)
	flow := c.Open(models.OrderDelivery, Customer{})
	require.NoError(t, flow.Fill(deliveryForm()))
	flow.Close()

	assert.Equal(t, StateIdle, flow.State())
	_, err := flow.Submit(context.Background(), lines(t), nil)
	assert.ErrorIs(t, err, ErrNotCollecting)
	assert.ErrorIs(t, flow.Fill(deliveryForm()), ErrNotCollecting)
	assert.Equal(t, 0, orders.headerCalls)
}

func TestSubmit_ScheduledUsesProfile(t *testing.T) {
	orders := &fakeOrders{}
	c := newComposer(orders, &fakeNotifier{}, monday)
	flow := c.Open(models.OrderScheduled, Customer{Name: "Ana", Phone: "11999990000", Address: "Casa 3 - Quarto 12"})
	require.NoError(t, flow.Fill(Form{PaymentMethod: "dinheiro", ScheduledDate: "2026-03-03", ScheduledTime: "08:00"}))

	res, err := flow.Submit(context.Background(), lines(t), nil)
	require.NoError(t, err)
	assert.Equal(t, models.OrderScheduled, res.Order.OrderType)
	assert.Equal(t, "Ana", res.Order.CustomerName)
	assert.Equal(t, "Casa 3 - Quarto 12", res.Order.CustomerAddress)
	assert.Equal(t, models.PaymentCash, res.Order.PaymentMethod)
	assert.Equal(t, "2026-03-03", res.Order.ScheduledDate)
	assert.Equal(t, "08:00", res.Order.ScheduledTime)
}

func TestSubmit_ScheduledSlotInsideBufferRejected(t *testing.T) {
	orders := &fakeOrders{}
	c := newComposer(orders, &fakeNotifier{}, monday)
	flow := c.Open(models.OrderScheduled, Customer{Name: "Ana", Phone: "11999990000"})
	require.NoError(t, flow.Fill(Form{PaymentMethod: "pix", ScheduledDate: "2026-03-02", ScheduledTime: "10:00"}))

	_, err := flow.Submit(context.Background(), lines(t), nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{FieldTime}, verr.Missing)
	assert.Equal(t, 0, orders.headerCalls)
}

func TestSubmit_PixChargeWhenConfigured(t *testing.T) {
	orders := &fakeOrders{}
	c := NewComposer(orders, nil, testSchedule(), &Pix{Key: "loja@buymore.com", Merchant: "Buy More", City: "São Paulo"})
	flow := c.Open(models.OrderDelivery, Customer{})
	require.NoError(t, flow.Fill(deliveryForm()))

	res, err := flow.Submit(context.Background(), lines(t), nil)
	require.NoError(t, err)
	require.NotNil(t, res.Pix)
	assert.Contains(t, res.Pix.Payload, "br.gov.bcb.pix")
	assert.Contains(t, res.Pix.Payload, "540525.50")
	assert.Contains(t, res.Pix.QRCode, "data:image/png;base64,")
}

func TestSubmit_WithMemoryStore(t *testing.T) {
	m := store.NewMemory()
	c := newComposer(m, &fakeNotifier{}, monday)
	flow := c.Open(models.OrderDelivery, Customer{})
	require.NoError(t, flow.Fill(deliveryForm()))

	res, err := flow.Submit(context.Background(), lines(t), nil)
	require.NoError(t, err)

	items, err := m.ListOrderItems(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	got, err := m.GetOrder(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("25.5")))
}
