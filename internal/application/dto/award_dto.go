package dto

// AwardResponse resultado de aceptar una oferta: la ganadora, las rechazadas en la misma
// operación y la RFQ ya adjudicada.
type AwardResponse struct {
	Accepted BidResponse   `json:"accepted"`
	Rejected []BidResponse `json:"rejected"`
	Rfq      RfqResponse   `json:"rfq"`
}

// ReconcileReport resultado de revisar la coherencia de una RFQ con sus ofertas.
type ReconcileReport struct {
	RfqID          string   `json:"rfq_id"`
	Repaired       bool     `json:"repaired"`
	RejectedBidIDs []string `json:"rejected_bid_ids,omitempty"`
	RfqAwarded     bool     `json:"rfq_awarded"`
	Issues         []string `json:"issues,omitempty"`
}
