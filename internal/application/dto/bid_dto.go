package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitBidRequest entrada para ofertar sobre una RFQ.
type SubmitBidRequest struct {
	Price        *decimal.Decimal `json:"price" validate:"required"`
	DeliveryDate string           `json:"delivery_date" validate:"required,datetime=2006-01-02"`
	Terms        string           `json:"terms" validate:"max=2000"`
}

// UpdateBidRequest edición parcial de una oferta todavía Submitted.
type UpdateBidRequest struct {
	Price        *decimal.Decimal `json:"price"`
	DeliveryDate *string          `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	Terms        *string          `json:"terms" validate:"omitempty,max=2000"`
}

// BidResponse salida de una oferta.
type BidResponse struct {
	ID           string          `json:"id"`
	RfqID        string          `json:"rfq_id"`
	SupplierID   string          `json:"supplier_id"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDate string          `json:"delivery_date"`
	Terms        string          `json:"terms"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SubmitBidResponse indica si la oferta se creó o se actualizó la existente del proveedor.
type SubmitBidResponse struct {
	Bid     BidResponse `json:"bid"`
	Created bool        `json:"created"`
}

// BidListResponse lista de ofertas.
type BidListResponse struct {
	Items []BidResponse `json:"items"`
	Page  *PageResponse `json:"page,omitempty"`
}
