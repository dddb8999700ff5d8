package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
)

// MovementHandler ajustes, devoluciones a proveedor y traslados entre bodegas.
type MovementHandler struct {
	adjustments *inventory.AdjustmentUseCase
	returns     *inventory.PurchaseReturnUseCase
	transfers   *inventory.TransferUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(adjustments *inventory.AdjustmentUseCase, returns *inventory.PurchaseReturnUseCase,
	transfers *inventory.TransferUseCase) *MovementHandler {
	return &MovementHandler{adjustments: adjustments, returns: returns, transfers: transfers}
}

// CreateAdjustment godoc
// @Summary      Registrar ajuste de inventario
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "Ajuste"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *MovementHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	a, err := h.adjustments.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromAdjustment(a))
}

// CreateReturn godoc
// @Summary      Registrar devolución a proveedor
// @Description  Sólo sobre compras Complete; la cantidad devuelta acumulada no puede superar la comprada.
// @Tags         purchase-returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SavePurchaseReturnRequest  true  "Devolución"
// @Success      201   {object}  dto.PurchaseReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-returns [post]
func (h *MovementHandler) CreateReturn(c *fiber.Ctx) error {
	var in dto.SavePurchaseReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	r, err := h.returns.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPurchaseReturn(r))
}

// UpdateReturn godoc
// @Summary      Actualizar devolución a proveedor
// @Tags         purchase-returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la devolución"
// @Param        body  body  dto.SavePurchaseReturnRequest  true  "Devolución"
// @Success      200   {object}  dto.PurchaseReturnResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-returns/{id} [put]
func (h *MovementHandler) UpdateReturn(c *fiber.Ctx) error {
	var in dto.SavePurchaseReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	r, err := h.returns.Update(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPurchaseReturn(r))
}

// CreateTransfer godoc
// @Summary      Trasladar stock entre bodegas
// @Tags         stock-transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockTransferRequest  true  "Traslado"
// @Success      201   {object}  dto.StockTransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-transfers [post]
func (h *MovementHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateStockTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.transfers.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromStockTransfer(t))
}

// GetTransfer godoc
// @Summary      Obtener traslado
// @Tags         stock-transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.StockTransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-transfers/{id} [get]
func (h *MovementHandler) GetTransfer(c *fiber.Ctx) error {
	t, err := h.transfers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromStockTransfer(t))
}
