package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/bid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/draft"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
)

// BidHandler maneja las ofertas de proveedores (protegido).
type BidHandler struct {
	uc     *bid.UseCase
	drafts *draft.Store
}

// NewBidHandler construye el handler. drafts puede ser nil.
func NewBidHandler(uc *bid.UseCase, drafts *draft.Store) *BidHandler {
	return &BidHandler{uc: uc, drafts: drafts}
}

// Submit godoc
// @Summary      Ofertar sobre una RFQ
// @Description  Si el proveedor ya tiene una oferta Submitted en la RFQ se actualiza (200); si no, se crea (201).
// @Tags         bids
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path   string                true   "ID de la RFQ"
// @Param        body   body   dto.SubmitBidRequest  true   "Oferta"
// @Param        draft  query  string                false  "Sesión de borrador a descartar"
// @Success      201    {object}  dto.SubmitBidResponse
// @Success      200    {object}  dto.SubmitBidResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Router       /api/rfqs/{id}/bids [post]
func (h *BidHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitBidRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Submit(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	discardDraft(c, h.drafts)
	status := fiber.StatusOK
	if out.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(out)
}

// ListForRfq godoc
// @Summary      Ofertas de una RFQ
// @Tags         bids
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID de la RFQ"
// @Param        order  query  string  false  "price (por defecto) o recent"
// @Success      200    {object}  dto.BidListResponse
// @Failure      403    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/rfqs/{id}/bids [get]
func (h *BidHandler) ListForRfq(c *fiber.Ctx) error {
	out, err := h.uc.ListForRfq(c.UserContext(), GetActor(c), c.Params("id"), c.Query("order"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener oferta
// @Tags         bids
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la oferta"
// @Success      200  {object}  dto.BidResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bids/{id} [get]
func (h *BidHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar oferta propia
// @Tags         bids
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la oferta"
// @Param        body  body  dto.UpdateBidRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.BidResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/bids/{id} [put]
func (h *BidHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateBidRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListForSupplier godoc
// @Summary      Ofertas del proveedor
// @Tags         bids
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del proveedor"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.BidListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id}/bids [get]
func (h *BidHandler) ListForSupplier(c *fiber.Ctx) error {
	out, err := h.uc.ListForSupplier(c.UserContext(), GetActor(c), c.Params("id"), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
