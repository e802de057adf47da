package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// BidRepository define el puerto de persistencia para Bid (DIP).
type BidRepository interface {
	Create(ctx context.Context, bid *entity.Bid) error
	GetByID(ctx context.Context, id string) (*entity.Bid, error)
	// FindSubmitted devuelve la oferta Submitted del proveedor en la RFQ, o (nil, nil).
	FindSubmitted(ctx context.Context, rfqID, supplierID string) (*entity.Bid, error)
	// Update persiste precio, fecha de entrega y términos solo si la oferta sigue Submitted.
	Update(ctx context.Context, bid *entity.Bid) (bool, error)
	ListByRfq(ctx context.Context, rfqID string, order entity.BidOrder) ([]*entity.Bid, error)
	ListBySupplier(ctx context.Context, supplierID string, limit, offset int) ([]*entity.Bid, error)
	// UpdateStatus cambia el estado solo si el actual es from. Devuelve false si no aplicó.
	UpdateStatus(ctx context.Context, id string, from, to entity.BidStatus, at time.Time) (bool, error)
	// RejectSiblings rechaza toda oferta de la RFQ distinta de exceptID que no esté ya Rejected
	// y devuelve las recién rechazadas.
	RejectSiblings(ctx context.Context, rfqID, exceptID string, at time.Time) ([]*entity.Bid, error)
	CountByStatus(ctx context.Context, rfqID string, status entity.BidStatus) (int, error)
}
