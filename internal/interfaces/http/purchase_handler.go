package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
)

// PurchaseHandler compras a proveedor y órdenes de compra.
type PurchaseHandler struct {
	purchases *inventory.PurchaseUseCase
	orders    *inventory.PurchaseOrderUseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(purchases *inventory.PurchaseUseCase, orders *inventory.PurchaseOrderUseCase) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, orders: orders}
}

// Create godoc
// @Summary      Registrar compra
// @Description  Una compra Complete (por defecto) entra al inventario en la misma transacción.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Compra"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.purchases.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPurchase(p))
}

// Get godoc
// @Summary      Obtener compra
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	p, err := h.purchases.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPurchase(p))
}

// Receive godoc
// @Summary      Recibir compra pendiente
// @Description  Pasa una compra Draft o Incomplete a Complete y registra las entradas.
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	p, err := h.purchases.Receive(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPurchase(p))
}

// CreateOrder godoc
// @Summary      Crear orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "Orden"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	o, err := h.orders.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPurchaseOrder(o))
}

// GetOrder godoc
// @Summary      Obtener orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseHandler) GetOrder(c *fiber.Ctx) error {
	o, err := h.orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPurchaseOrder(o))
}

// UpdateOrderStatus godoc
// @Summary      Cambiar estado de la orden
// @Description  Received genera la compra derivada y la entrada al inventario. Received y Cancelled son terminales.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.UpdatePurchaseOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/status [patch]
func (h *PurchaseHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var in dto.UpdatePurchaseOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	o, err := h.orders.UpdateStatus(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPurchaseOrder(o))
}
