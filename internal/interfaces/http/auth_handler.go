package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
)

// AuthHandler emite tokens de desarrollo. En producción la identidad la firma un servicio externo
// con el mismo secreto, y esta ruta no se registra.
type AuthHandler struct {
	uc *auth.TokenUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.TokenUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// IssueToken godoc
// @Summary      Emitir token de desarrollo
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TokenRequest  true  "user_id, company_id, role"
// @Success      200   {object}  dto.TokenResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/token [post]
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var in dto.TokenRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Issue(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
