package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/draft"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
)

// DraftHandler borradores de formularios por sesión.
type DraftHandler struct {
	store *draft.Store
}

// NewDraftHandler construye el handler.
func NewDraftHandler(store *draft.Store) *DraftHandler {
	return &DraftHandler{store: store}
}

// Save godoc
// @Summary      Guardar borrador
// @Tags         drafts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        session  path  string                true  "Sesión del formulario"
// @Param        body     body  dto.SaveDraftRequest  true  "Borrador"
// @Success      200      {object}  dto.DraftResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Router       /api/drafts/{session} [put]
func (h *DraftHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveDraftRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.store.Save(c.UserContext(), GetActor(c), c.Params("session"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener borrador
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        session  path  string  true  "Sesión del formulario"
// @Success      200      {object}  dto.DraftResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/drafts/{session} [get]
func (h *DraftHandler) Get(c *fiber.Ctx) error {
	out, err := h.store.Get(c.UserContext(), GetActor(c), c.Params("session"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Discard godoc
// @Summary      Descartar borrador
// @Tags         drafts
// @Security     Bearer
// @Param        session  path  string  true  "Sesión del formulario"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drafts/{session} [delete]
func (h *DraftHandler) Discard(c *fiber.Ctx) error {
	if !h.store.Discard(c.UserContext(), GetActor(c), c.Params("session")) {
		return writeError(c, domain.ErrNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
