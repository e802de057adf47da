package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RfqStatus estado de una solicitud de cotización.
type RfqStatus string

const (
	RfqStatusPosted  RfqStatus = "Posted"
	RfqStatusBidding RfqStatus = "Bidding"
	RfqStatusAwarded RfqStatus = "Awarded"
	RfqStatusClosed  RfqStatus = "Closed"
)

// Rfq representa una solicitud de cotización publicada por una empresa.
// DeliveryTimeline y ExpectedPrice son opcionales; BidDeadline es una fecha (medianoche UTC).
type Rfq struct {
	ID               string
	CompanyID        string
	ItemName         string
	Quantity         int
	Description      string
	DeliveryLocation string
	DeliveryTimeline *time.Time
	ExpectedPrice    *decimal.Decimal
	BidDeadline      time.Time
	Status           RfqStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsOpen indica si la RFQ todavía admite ofertas y adjudicación.
func (r *Rfq) IsOpen() bool {
	return r.Status == RfqStatusPosted || r.Status == RfqStatusBidding
}

// IsTerminal indica si la RFQ ya no puede cambiar de estado.
func (r *Rfq) IsTerminal() bool {
	return r.Status == RfqStatusAwarded || r.Status == RfqStatusClosed
}

// DeadlinePassed es true cuando now es posterior al último instante del día límite (UTC).
func (r *Rfq) DeadlinePassed(now time.Time) bool {
	y, m, d := r.BidDeadline.Date()
	endOfDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return !now.UTC().Before(endOfDay)
}
