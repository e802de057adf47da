package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidStatus estado de una oferta de proveedor.
type BidStatus string

const (
	BidStatusSubmitted BidStatus = "Submitted"
	BidStatusAccepted  BidStatus = "Accepted"
	BidStatusRejected  BidStatus = "Rejected"
)

// Bid oferta de un proveedor sobre una RFQ. DeliveryDate es una fecha (medianoche UTC).
type Bid struct {
	ID           string
	RfqID        string
	SupplierID   string
	Price        decimal.Decimal
	DeliveryDate time.Time
	Terms        string
	Status       BidStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal indica si la oferta ya fue aceptada o rechazada.
func (b *Bid) IsTerminal() bool {
	return b.Status == BidStatusAccepted || b.Status == BidStatusRejected
}

// BidOrder criterio de orden para listar ofertas de una RFQ.
type BidOrder string

const (
	BidOrderPrice  BidOrder = "price"  // precio ascendente
	BidOrderRecent BidOrder = "recent" // más recientes primero
)
