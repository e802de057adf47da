package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/draft"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/rfq"
)

// RfqHandler maneja las solicitudes de cotización (protegido).
type RfqHandler struct {
	uc     *rfq.UseCase
	drafts *draft.Store
}

// NewRfqHandler construye el handler. drafts puede ser nil.
func NewRfqHandler(uc *rfq.UseCase, drafts *draft.Store) *RfqHandler {
	return &RfqHandler{uc: uc, drafts: drafts}
}

// Create godoc
// @Summary      Publicar solicitud de cotización
// @Description  Crea la RFQ en estado Posted. Con ?draft=<sesión> descarta el borrador tras crearla.
// @Tags         rfqs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body   body   dto.CreateRfqRequest  true   "Datos de la RFQ"
// @Param        draft  query  string                false  "Sesión de borrador a descartar"
// @Success      201    {object}  dto.RfqResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      403    {object}  dto.ErrorResponse
// @Router       /api/rfqs [post]
func (h *RfqHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRfqRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	actor := GetActor(c)
	out, err := h.uc.Create(c.UserContext(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	discardDraft(c, h.drafts)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar solicitudes de cotización
// @Description  Una empresa solo ve sus RFQ. status acepta varios valores separados por coma; open=true equivale a Posted,Bidding.
// @Tags         rfqs
// @Security     Bearer
// @Produce      json
// @Param        status      query  string  false  "Estados (Posted,Bidding,Awarded,Closed)"
// @Param        open        query  bool    false  "Solo RFQ que aceptan ofertas"
// @Param        company_id  query  string  false  "Filtrar por empresa (proveedores y consumidores)"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200         {object}  dto.RfqListResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/rfqs [get]
func (h *RfqHandler) List(c *fiber.Ctx) error {
	q := dto.RfqListQuery{
		CompanyID:   c.Query("company_id"),
		Status:      splitCSV(c.Query("status")),
		OpenOnly:    c.QueryBool("open", false),
		PageRequest: pageFromQuery(c),
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener RFQ por ID
// @Tags         rfqs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la RFQ"
// @Success      200  {object}  dto.RfqResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rfqs/{id} [get]
func (h *RfqHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar RFQ
// @Description  Solo la empresa dueña y mientras la RFQ esté Posted o Bidding.
// @Tags         rfqs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la RFQ"
// @Param        body  body  dto.UpdateRfqRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.RfqResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/rfqs/{id} [put]
func (h *RfqHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateRfqRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la RFQ
// @Tags         rfqs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la RFQ"
// @Param        body  body  dto.UpdateRfqStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.RfqResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/rfqs/{id}/status [patch]
func (h *RfqHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateRfqStatusRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetActor(c), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar RFQ
// @Description  Elimina la RFQ junto con sus ofertas y avisos.
// @Tags         rfqs
// @Security     Bearer
// @Param        id   path  string  true  "ID de la RFQ"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rfqs/{id} [delete]
func (h *RfqHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
}

// discardDraft borra el borrador indicado en ?draft= una vez confirmada la operación.
func discardDraft(c *fiber.Ctx, drafts *draft.Store) {
	session := c.Query("draft")
	if drafts == nil || session == "" {
		return
	}
	drafts.Discard(c.UserContext(), GetActor(c), session)
}
