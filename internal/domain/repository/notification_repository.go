package repository

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// NotificationRepository define el puerto de persistencia para avisos.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	// MarkRead devuelve false si el aviso no existe o no es del destinatario.
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
}
