package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/award"
)

// AwardHandler maneja la adjudicación: aceptar, rechazar, cerrar y reconciliar (protegido).
type AwardHandler struct {
	coordinator *award.Coordinator
	letters     *award.LetterUseCase
}

// NewAwardHandler construye el handler.
func NewAwardHandler(coordinator *award.Coordinator, letters *award.LetterUseCase) *AwardHandler {
	return &AwardHandler{coordinator: coordinator, letters: letters}
}

// Accept godoc
// @Summary      Aceptar oferta
// @Description  En una sola transacción acepta la oferta, rechaza las demás Submitted de la RFQ y la marca Awarded.
// @Tags         award
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la oferta"
// @Success      200  {object}  dto.AwardResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/bids/{id}/accept [post]
func (h *AwardHandler) Accept(c *fiber.Ctx) error {
	out, err := h.coordinator.AcceptBid(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar oferta
// @Tags         award
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la oferta"
// @Success      200  {object}  dto.BidResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/bids/{id}/reject [post]
func (h *AwardHandler) Reject(c *fiber.Ctx) error {
	out, err := h.coordinator.RejectBid(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar RFQ
// @Description  La RFQ deja de aceptar ofertas; las Submitted quedan como están.
// @Tags         award
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la RFQ"
// @Success      200  {object}  dto.RfqResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/rfqs/{id}/close [post]
func (h *AwardHandler) Close(c *fiber.Ctx) error {
	out, err := h.coordinator.CloseRfq(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reconciliar RFQ con sus ofertas
// @Description  Repara una adjudicación a medias (oferta Accepted con hermanas Submitted o RFQ sin marcar Awarded).
// @Tags         award
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la RFQ"
// @Success      200  {object}  dto.ReconcileReport
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rfqs/{id}/reconcile [post]
func (h *AwardHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.coordinator.ReconcileOwned(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AwardLetter godoc
// @Summary      Carta de adjudicación (PDF)
// @Tags         award
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la RFQ"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/rfqs/{id}/award-letter [get]
func (h *AwardHandler) AwardLetter(c *fiber.Ctx) error {
	pdf, filename, err := h.letters.Download(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
