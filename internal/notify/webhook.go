package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"buymore_back_end/internal/models"
)

// Webhook faz POST {"record": {...}} com Authorization: Bearer <segredo>.
type Webhook struct {
	URL    string
	Secret string
	Client *http.Client
}

func NewWebhook(url, secret string, timeout time.Duration) *Webhook {
	return &Webhook{URL: url, Secret: secret, Client: &http.Client{Timeout: timeout}}
}

type webhookItem struct {
	Name        string      `json:"name"`
	Quantity    int         `json:"quantity"`
	Price       json.Number `json:"price"`
	Ingredients []string    `json:"ingredients,omitempty"`
}

type webhookRecord struct {
	ID                 string        `json:"id"`
	CustomerName       string        `json:"customer_name"`
	CustomerEmail      string        `json:"customer_email"`
	CustomerPhone      string        `json:"customer_phone"`
	CustomerAddress    string        `json:"customer_address"`
	CustomerComplement string        `json:"customer_complement"`
	PaymentMethod      string        `json:"payment_method"`
	TotalPrice         json.Number   `json:"total_price"`
	Items              []webhookItem `json:"items"`
}

func newRecord(o models.Order) webhookRecord {
	rec := webhookRecord{
		ID:                 o.ID.String(),
		CustomerName:       o.CustomerName,
		CustomerEmail:      o.CustomerEmail,
		CustomerPhone:      o.CustomerPhone,
		CustomerAddress:    o.CustomerAddress,
		CustomerComplement: o.CustomerComplement,
		PaymentMethod:      string(o.PaymentMethod),
		TotalPrice:         json.Number(o.Total.StringFixed(2)),
		Items:              make([]webhookItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		rec.Items = append(rec.Items, webhookItem{
			Name:        it.Name,
			Quantity:    it.Quantity,
			Price:       json.Number(it.Price.StringFixed(2)),
			Ingredients: it.Ingredients,
		})
	}
	return rec
}

func (w *Webhook) NotifyOrder(ctx context.Context, o models.Order) error {
	body, err := json.Marshal(map[string]webhookRecord{"record": newRecord(o)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("erro no webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+w.Secret)
	}

	res, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("erro no webhook: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("erro no webhook: %s", res.Status)
	}
	log.Printf("📨 Webhook do pedido %s enviado", o.ID)
	return nil
}
