package dto

import "github.com/jhoicas/Cotizaciones-api/internal/domain/entity"

// FromRfq convierte la entidad a su representación HTTP.
func FromRfq(r *entity.Rfq) RfqResponse {
	out := RfqResponse{
		ID:               r.ID,
		CompanyID:        r.CompanyID,
		ItemName:         r.ItemName,
		Quantity:         r.Quantity,
		Description:      r.Description,
		DeliveryLocation: r.DeliveryLocation,
		ExpectedPrice:    r.ExpectedPrice,
		BidDeadline:      r.BidDeadline.Format(DateLayout),
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.DeliveryTimeline != nil {
		s := r.DeliveryTimeline.Format(DateLayout)
		out.DeliveryTimeline = &s
	}
	return out
}

// FromBid convierte la entidad a su representación HTTP.
func FromBid(b *entity.Bid) BidResponse {
	return BidResponse{
		ID:           b.ID,
		RfqID:        b.RfqID,
		SupplierID:   b.SupplierID,
		Price:        b.Price,
		DeliveryDate: b.DeliveryDate.Format(DateLayout),
		Terms:        b.Terms,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// FromBids convierte una lista; nunca devuelve nil para que el JSON sea [].
func FromBids(list []*entity.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(list))
	for _, b := range list {
		out = append(out, FromBid(b))
	}
	return out
}

// FromNotification convierte la entidad a su representación HTTP.
func FromNotification(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		RfqID:     n.RfqID,
		BidID:     n.BidID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
