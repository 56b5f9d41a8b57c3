package orders

import "buymore_back_end/internal/models"

// Presentation é como um status aparece para o cliente.
type Presentation struct {
	Status      models.OrderStatus `json:"status"`
	Label       string             `json:"label"`
	Icon        string             `json:"icon"`
	Color       string             `json:"color"`
	Description string             `json:"description"`
}

var presentations = map[models.OrderStatus]Presentation{
	models.StatusPending:      {models.StatusPending, "Pendente", "clock", "bg-yellow-500", "Aguardando confirmação"},
	models.StatusAccepted:     {models.StatusAccepted, "Aceito", "check-circle", "bg-blue-500", "Pedido confirmado"},
	models.StatusInProduction: {models.StatusInProduction, "Em Produção", "package", "bg-purple-500", "Preparando seu pedido"},
	models.StatusReady:        {models.StatusReady, "Pronto", "package-check", "bg-green-500", "Pronto para entrega"},
	models.StatusDelivered:    {models.StatusDelivered, "Entregue", "truck", "bg-emerald-500", "Pedido entregue"},
	models.StatusCancelled:    {models.StatusCancelled, "Cancelado", "x-circle", "bg-red-500", "Pedido cancelado"},
}

var aliases = map[models.OrderStatus]models.OrderStatus{
	models.StatusPreparing:      models.StatusInProduction,
	models.StatusOutForDelivery: models.StatusReady,
}

// Present resolve aliases; status desconhecido aparece como pendente.
func Present(status models.OrderStatus) Presentation {
	if canonical, ok := aliases[status]; ok {
		status = canonical
	}
	if p, ok := presentations[status]; ok {
		return p
	}
	return presentations[models.StatusPending]
}
