package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
)

// QuotationHandler cotizaciones del taller (venta de repuestos).
type QuotationHandler struct {
	uc *inventory.SaleUseCase
}

// NewQuotationHandler construye el handler.
func NewQuotationHandler(uc *inventory.SaleUseCase) *QuotationHandler {
	return &QuotationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cotización
// @Description  Descuenta del inventario los repuestos de la cotización.
// @Tags         quotations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveQuotationRequest  true  "Cotización"
// @Success      201   {object}  dto.QuotationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "stock insuficiente"
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/quotations [post]
func (h *QuotationHandler) Create(c *fiber.Ctx) error {
	var in dto.SaveQuotationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	q, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromQuotation(q))
}

// Update godoc
// @Summary      Actualizar cotización
// @Description  Revierte las salidas vigentes y registra las nuevas líneas en una sola transacción.
// @Tags         quotations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la cotización"
// @Param        body  body  dto.SaveQuotationRequest  true  "Cotización"
// @Success      200   {object}  dto.QuotationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotations/{id} [put]
func (h *QuotationHandler) Update(c *fiber.Ctx) error {
	var in dto.SaveQuotationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	q, err := h.uc.Update(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromQuotation(q))
}

// Get godoc
// @Summary      Obtener cotización
// @Tags         quotations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cotización"
// @Success      200  {object}  dto.QuotationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotations/{id} [get]
func (h *QuotationHandler) Get(c *fiber.Ctx) error {
	q, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromQuotation(q))
}
