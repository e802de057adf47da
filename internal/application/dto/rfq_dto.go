package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRfqRequest entrada para publicar una solicitud de cotización.
type CreateRfqRequest struct {
	ItemName         string           `json:"item_name" validate:"required,max=200"`
	Quantity         int              `json:"quantity" validate:"required,gt=0"`
	Description      string           `json:"description" validate:"max=2000"`
	DeliveryLocation string           `json:"delivery_location" validate:"required,max=300"`
	DeliveryTimeline string           `json:"delivery_timeline" validate:"omitempty,datetime=2006-01-02"`
	ExpectedPrice    *decimal.Decimal `json:"expected_price"`
	BidDeadline      string           `json:"bid_deadline" validate:"required,datetime=2006-01-02"`
}

// UpdateRfqRequest edición parcial del contenido de una RFQ (el estado no se toca aquí).
type UpdateRfqRequest struct {
	ItemName         *string          `json:"item_name" validate:"omitempty,max=200"`
	Quantity         *int             `json:"quantity" validate:"omitempty,gt=0"`
	Description      *string          `json:"description" validate:"omitempty,max=2000"`
	DeliveryLocation *string          `json:"delivery_location" validate:"omitempty,max=300"`
	DeliveryTimeline *string          `json:"delivery_timeline" validate:"omitempty,datetime=2006-01-02"`
	ExpectedPrice    *decimal.Decimal `json:"expected_price"`
	BidDeadline      *string          `json:"bid_deadline" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateRfqStatusRequest cambio de estado explícito.
type UpdateRfqStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RfqListQuery filtros de listado.
type RfqListQuery struct {
	CompanyID string
	Status    []string
	OpenOnly  bool
	PageRequest
}

// RfqResponse salida de una RFQ.
type RfqResponse struct {
	ID               string           `json:"id"`
	CompanyID        string           `json:"company_id"`
	ItemName         string           `json:"item_name"`
	Quantity         int              `json:"quantity"`
	Description      string           `json:"description"`
	DeliveryLocation string           `json:"delivery_location"`
	DeliveryTimeline *string          `json:"delivery_timeline,omitempty"`
	ExpectedPrice    *decimal.Decimal `json:"expected_price,omitempty"`
	BidDeadline      string           `json:"bid_deadline"`
	Status           string           `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// RfqListResponse lista paginada de RFQ.
type RfqListResponse struct {
	Items []RfqResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}
