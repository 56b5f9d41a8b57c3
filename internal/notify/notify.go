// Package notify avisa a loja de um novo pedido. Toda falha aqui é "soft":
// o pedido já está gravado e o checkout só exibe um aviso.
package notify

import (
	"context"
	"errors"

	"buymore_back_end/internal/models"
)

type Notifier interface {
	NotifyOrder(ctx context.Context, o models.Order) error
}

// Multi envia para todos e junta os erros.
type Multi []Notifier

func (m Multi) NotifyOrder(ctx context.Context, o models.Order) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyOrder(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop é usado quando nada está configurado.
type Noop struct{}

func (Noop) NotifyOrder(context.Context, models.Order) error { return nil }
