package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// RfqFilter criterios para listar RFQ. Campos vacíos no filtran.
type RfqFilter struct {
	CompanyID string
	Statuses  []entity.RfqStatus
	Limit     int
	Offset    int
}

// RfqRepository define el puerto de persistencia para Rfq (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type RfqRepository interface {
	Create(ctx context.Context, rfq *entity.Rfq) error
	GetByID(ctx context.Context, id string) (*entity.Rfq, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción; serializa adjudicaciones por RFQ.
	GetForUpdate(ctx context.Context, id string) (*entity.Rfq, error)
	List(ctx context.Context, filter RfqFilter) ([]*entity.Rfq, error)
	Count(ctx context.Context, filter RfqFilter) (int, error)
	// Update persiste solo los campos de contenido (no el estado).
	Update(ctx context.Context, rfq *entity.Rfq) error
	// UpdateStatus cambia el estado solo si el actual está en from. Devuelve false si no aplicó.
	UpdateStatus(ctx context.Context, id string, from []entity.RfqStatus, to entity.RfqStatus, at time.Time) (bool, error)
	// Delete elimina la RFQ y, en cascada, sus ofertas y avisos.
	Delete(ctx context.Context, id string) error
	// ListInconsistentIDs RFQ cuyo estado no cuadra con sus ofertas (aceptada sin Awarded, Awarded con ofertas abiertas, etc.).
	ListInconsistentIDs(ctx context.Context) ([]string, error)
}
