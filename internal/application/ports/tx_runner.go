package ports

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback completo: ningún cambio parcial queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		rfqRepo repository.RfqRepository,
		bidRepo repository.BidRepository,
		notifRepo repository.NotificationRepository,
	) error) error
}
