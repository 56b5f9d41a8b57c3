// Package checkout transforma o carrinho em pedido.
//
// Um Flow vive enquanto o formulário está aberto: Collecting → Submitting →
// Completed | Failed, e Close volta para Idle. O cabeçalho e os itens do
// pedido são duas escritas independentes; se a segunda falhar o cabeçalho
// fica gravado sem itens e o fluxo termina em Failed.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"buymore_back_end/internal/cart"
	"buymore_back_end/internal/models"
	"buymore_back_end/internal/notify"
	"buymore_back_end/internal/store"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateIdle       State = "idle"
	StateCollecting State = "collecting"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// DefaultEmail é gravado quando o cliente não informa e-mail.
const DefaultEmail = "cliente@sem-email.com"

const NotifyWarning = "Pedido registrado, mas não conseguimos avisar a loja automaticamente."

var (
	ErrValidation    = errors.New("dados do pedido incompletos")
	ErrNotCollecting = errors.New("checkout não está aberto")
	ErrItemsNotSaved = errors.New("itens do pedido não foram gravados")
)

// Campos que a validação pode apontar.
const (
	FieldName     = "nome"
	FieldPhone    = "telefone"
	FieldAddress  = "endereço"
	FieldPayment  = "pagamento"
	FieldDate     = "data"
	FieldTime     = "horário"
	FieldCart     = "carrinho"
	FieldCustomer = "cadastro"
)

type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "preencha: " + strings.Join(e.Missing, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Form é o que o cliente envia.
type Form struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Address       string `json:"customer_address"`
	Complement    string `json:"customer_complement"`
	PaymentMethod string `json:"payment_method"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
}

// Customer vem do cadastro do usuário logado (pedido agendado).
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type Result struct {
	Order   models.Order `json:"order"`
	Warning string       `json:"warning,omitempty"`
	Pix     *PixCharge   `json:"pix,omitempty"`
}

type Composer struct {
	orders        store.OrderWriter
	notifier      notify.Notifier
	schedule      Schedule
	pix           *Pix
	onCreated     []func(context.Context, models.Order)
	notifyTimeout time.Duration
	now           func() time.Time
}

// NewComposer aceita notifier e pix nil.
func NewComposer(orders store.OrderWriter, notifier notify.Notifier, schedule Schedule, pix *Pix) *Composer {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Composer{
		orders:        orders,
		notifier:      notifier,
		schedule:      schedule,
		pix:           pix,
		notifyTimeout: 10 * time.Second,
		now:           time.Now,
	}
}

// OnCreated registra um callback chamado após cada pedido gravado com itens.
func (c *Composer) OnCreated(fn func(context.Context, models.Order)) {
	c.onCreated = append(c.onCreated, fn)
}

func (c *Composer) Schedule() Schedule { return c.schedule }

func (c *Composer) Now() time.Time { return c.now() }

type Flow struct {
	c        *Composer
	kind     models.OrderType
	customer Customer

	mu    sync.Mutex
	state State
	form  Form
	gen   int
}

// Open inicia um checkout do tipo pedido, já em Collecting.
func (c *Composer) Open(kind models.OrderType, customer Customer) *Flow {
	if kind != models.OrderScheduled {
		kind = models.OrderDelivery
	}
	return &Flow{c: c, kind: kind, customer: customer, state: StateCollecting}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Kind() models.OrderType { return f.kind }

// Fill substitui o formulário. Só vale em Collecting.
func (f *Flow) Fill(form Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateCollecting {
		return ErrNotCollecting
	}
	f.form = form
	return nil
}

// Close descarta o formulário. Uma gravação em andamento segue até o fim,
// mas o resultado não muda mais o estado do fluxo.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateIdle
	f.form = Form{}
	f.gen++
}

// Validate devolve *ValidationError com todas as pendências de uma vez.
func (f *Flow) Validate(lines []cart.Line) error {
	f.mu.Lock()
	form := f.form
	f.mu.Unlock()
	return f.validate(form, lines, f.c.now())
}

func (f *Flow) validate(form Form, lines []cart.Line, now time.Time) error {
	var missing []string
	if len(lines) == 0 {
		missing = append(missing, FieldCart)
	}

	switch f.kind {
	case models.OrderScheduled:
		if strings.TrimSpace(f.customer.Name) == "" || strings.TrimSpace(f.customer.Phone) == "" {
			missing = append(missing, FieldCustomer)
		}
	default:
		if strings.TrimSpace(form.CustomerName) == "" {
			missing = append(missing, FieldName)
		}
		if strings.TrimSpace(form.CustomerPhone) == "" {
			missing = append(missing, FieldPhone)
		}
		if strings.TrimSpace(form.Address) == "" {
			missing = append(missing, FieldAddress)
		}
	}

	if _, ok := models.ParsePaymentMethod(form.PaymentMethod); !ok {
		missing = append(missing, FieldPayment)
	}

	if f.kind == models.OrderScheduled {
		date := strings.TrimSpace(form.ScheduledDate)
		switch {
		case date == "" || !f.c.schedule.offersDate(date, now):
			missing = append(missing, FieldDate, FieldTime)
		case !f.c.schedule.slotAvailable(date, strings.TrimSpace(form.ScheduledTime), now):
			missing = append(missing, FieldTime)
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Submit grava o pedido a partir do snapshot do carrinho e, se tudo der
// certo, chama clearCart. Em erro de validação nada é gravado e o carrinho
// não é tocado.
func (f *Flow) Submit(ctx context.Context, lines []cart.Line, clearCart func(context.Context) error) (Result, error) {
	f.mu.Lock()
	if f.state != StateCollecting {
		f.mu.Unlock()
		return Result{}, ErrNotCollecting
	}
	form := f.form
	now := f.c.now()
	if err := f.validate(form, lines, now); err != nil {
		f.mu.Unlock()
		return Result{}, err
	}
	f.state = StateSubmitting
	gen := f.gen
	f.mu.Unlock()

	res, err := f.c.place(ctx, f.kind, f.customer, form, lines, now)

	f.mu.Lock()
	if f.gen == gen {
		if err != nil {
			f.state = StateFailed
		} else {
			f.state = StateCompleted
		}
	}
	f.mu.Unlock()

	if err != nil {
		return res, err
	}
	if clearCart != nil {
		if cerr := clearCart(ctx); cerr != nil {
			log.Printf("⚠️ Pedido %s criado, mas o carrinho não foi limpo: %v", res.Order.ID, cerr)
		}
	}
	return res, nil
}

func (c *Composer) buildOrder(kind models.OrderType, customer Customer, form Form, lines []cart.Line) models.Order {
	payment, _ := models.ParsePaymentMethod(form.PaymentMethod)
	o := models.Order{
		CustomerComplement: strings.TrimSpace(form.Complement),
		PaymentMethod:      payment,
		OrderType:          kind,
		Status:             models.StatusPending,
	}

	if kind == models.OrderScheduled {
		o.CustomerName = customer.Name
		o.CustomerPhone = customer.Phone
		o.CustomerEmail = customer.Email
		o.CustomerAddress = customer.Address
		o.ScheduledDate = strings.TrimSpace(form.ScheduledDate)
		o.ScheduledTime = strings.TrimSpace(form.ScheduledTime)
	} else {
		o.CustomerName = strings.TrimSpace(form.CustomerName)
		o.CustomerPhone = strings.TrimSpace(form.CustomerPhone)
		o.CustomerEmail = strings.TrimSpace(form.CustomerEmail)
		o.CustomerAddress = strings.TrimSpace(form.Address)
	}
	if o.CustomerEmail == "" {
		o.CustomerEmail = DefaultEmail
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	o.Total = total
	return o
}

func itemsFor(lines []cart.Line) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID:   l.ProductID,
			PromotionID: l.PromotionID,
			Name:        l.Name,
			Quantity:    l.Quantity,
			Price:       l.Price,
			Ingredients: l.Ingredients,
		})
	}
	return items
}

func (c *Composer) place(ctx context.Context, kind models.OrderType, customer Customer, form Form, lines []cart.Line, now time.Time) (Result, error) {
	order := c.buildOrder(kind, customer, form, lines)
	order.CreatedAt = now

	if err := c.orders.InsertOrder(ctx, &order); err != nil {
		log.Printf("❌ Erro ao criar pedido: %v", err)
		return Result{}, fmt.Errorf("erro ao criar pedido: %w", err)
	}

	items := itemsFor(lines)
	if err := c.orders.InsertOrderItems(ctx, order.ID, items); err != nil {
		// Sem rollback: o cabeçalho fica gravado sem itens.
		log.Printf("❌ Pedido %s gravado SEM itens (total %s): %v", order.ID, order.Total.StringFixed(2), err)
		return Result{Order: order}, fmt.Errorf("%w (pedido %s): %v", ErrItemsNotSaved, order.ID, err)
	}
	order.Items = items
	log.Printf("✅ Pedido %s criado (%d itens, R$ %s)", order.ID, len(items), order.Total.StringFixed(2))

	res := Result{Order: order}

	nctx, cancel := context.WithTimeout(ctx, c.notifyTimeout)
	if err := c.notifier.NotifyOrder(nctx, order); err != nil {
		log.Printf("⚠️ Falha ao notificar pedido %s: %v", order.ID, err)
		res.Warning = NotifyWarning
	}
	cancel()

	for _, fn := range c.onCreated {
		fn(ctx, order)
	}

	if c.pix != nil && order.PaymentMethod == models.PaymentPix {
		charge, err := c.pix.Charge(order.Total, strings.ReplaceAll(order.ID.String(), "-", ""))
		if err != nil {
			log.Printf("⚠️ Erro ao gerar QR Pix do pedido %s: %v", order.ID, err)
		} else {
			res.Pix = charge
		}
	}
	return res, nil
}
