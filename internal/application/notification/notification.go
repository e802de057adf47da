package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// Build arma un aviso listo para persistir en la misma transacción que el cambio que lo origina.
func Build(recipientID, kind, rfqID, bidID, message string, at time.Time) *entity.Notification {
	return &entity.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Kind:        kind,
		RfqID:       rfqID,
		BidID:       bidID,
		Message:     message,
		CreatedAt:   at,
	}
}

// RecipientFor identificador con el que un actor recibe avisos: la empresa para compradores,
// el usuario para proveedores.
func RecipientFor(actor entity.Actor) string {
	if actor.IsCompany() {
		return actor.OwnerID()
	}
	return actor.UserID
}
