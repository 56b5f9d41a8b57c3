package notify

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"buymore_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// Mail manda um resumo do pedido para o e-mail da loja.
type Mail struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

func (m *Mail) NotifyOrder(ctx context.Context, o models.Order) error {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return err
	}
	if err := msg.To(m.To); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("Novo pedido de %s (R$ %s)", o.CustomerName, o.Total.StringFixed(2)))
	msg.SetBodyString(mail.TypeTextHTML, OrderHTML(o))

	client, err := mail.NewClient(m.Host,
		mail.WithPort(m.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.Username),
		mail.WithPassword(m.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Enviando e-mail do pedido para", m.To)
	return client.DialAndSendWithContext(ctx, msg)
}

// OrderHTML monta a tabela de itens do e-mail.
func OrderHTML(o models.Order) string {
	var rows strings.Builder
	for _, it := range o.Items {
		name := html.EscapeString(it.Name)
		if len(it.Ingredients) > 0 {
			name += "<br><small>" + html.EscapeString(strings.Join(it.Ingredients, ", ")) + "</small>"
		}
		fmt.Fprintf(&rows, `
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>R$ %s</td>
			</tr>`, name, it.Quantity, it.Price.StringFixed(2))
	}

	when := ""
	if o.ScheduledDate != "" {
		when = fmt.Sprintf("<p><strong>Entrega:</strong> %s às %s</p>", html.EscapeString(o.ScheduledDate), html.EscapeString(o.ScheduledTime))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="pt-BR">
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h2>Novo pedido</h2>
	<p><strong>Cliente:</strong> %s (%s)</p>
	<p><strong>Endereço:</strong> %s %s</p>
	<p><strong>Pagamento:</strong> %s</p>
	%s
	<table style="width: 100%%; border-collapse: collapse;">
		<thead><tr><th>Produto</th><th>Qtd</th><th>Preço</th></tr></thead>
		<tbody>%s</tbody>
	</table>
	<p><strong>Total:</strong> R$ %s</p>
</body>
</html>`,
		html.EscapeString(o.CustomerName), html.EscapeString(o.CustomerPhone),
		html.EscapeString(o.CustomerAddress), html.EscapeString(o.CustomerComplement),
		html.EscapeString(string(o.PaymentMethod)), when, rows.String(), o.Total.StringFixed(2))
}
