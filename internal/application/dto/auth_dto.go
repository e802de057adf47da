package dto

// TokenRequest emisión de token de desarrollo (identidad simulada).
type TokenRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role" validate:"required,oneof=supplier company consumer"`
}

// TokenResponse token firmado.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // segundos
}
