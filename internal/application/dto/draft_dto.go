package dto

import (
	"encoding/json"
	"time"
)

// SaveDraftRequest borrador de formulario (RFQ u oferta) que el usuario no ha enviado.
type SaveDraftRequest struct {
	Kind    string          `json:"kind" validate:"required,oneof=rfq bid"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// DraftResponse borrador guardado.
type DraftResponse struct {
	Session   string          `json:"session"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}
