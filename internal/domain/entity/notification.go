package entity

import "time"

// Tipos de notificación.
const (
	NotificationBidSubmitted = "bid_submitted"
	NotificationBidAccepted  = "bid_accepted"
	NotificationBidRejected  = "bid_rejected"
	NotificationRfqClosed    = "rfq_closed"
)

// Notification aviso dirigido a un usuario o empresa, escrito en la misma transacción que el cambio que lo origina.
type Notification struct {
	ID          string
	RecipientID string
	Kind        string
	RfqID       string
	BidID       string // vacío si el aviso es sobre la RFQ
	Message     string
	Read        bool
	CreatedAt   time.Time
}
