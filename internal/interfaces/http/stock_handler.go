package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
	"github.com/jhoicas/autotaller-api/internal/jobs"
)

// ReconcileEnqueuer encola conciliaciones en segundo plano.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, p jobs.ReconcilePayload) (*asynq.TaskInfo, error)
}

// StockHandler consultas de stock, kardex, verificación y reposición.
type StockHandler struct {
	query         *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
	jobs          ReconcileEnqueuer
}

// NewStockHandler construye el handler. jobs puede ser nil (sólo conciliación síncrona).
func NewStockHandler(query *inventory.StockQueryUseCase, replenishment *inventory.ReplenishmentUseCase, jobs ReconcileEnqueuer) *StockHandler {
	return &StockHandler{query: query, replenishment: replenishment, jobs: jobs}
}

// Positions godoc
// @Summary      Posiciones de stock
// @Description  Entradas, salidas, saldo, precios promedio y valor por producto y bodega, calculados desde el libro.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Filtrar por producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Success      200  {array}   dto.StockPositionResponse
// @Router       /api/stock/positions [get]
func (h *StockHandler) Positions(c *fiber.Ctx) error {
	list, err := h.query.ListStockPositions(c.UserContext(), repository.PositionFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPositions(list))
}

// Current godoc
// @Summary      Stock actual de un producto en una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true  "Producto"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.CurrentStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/current [get]
func (h *StockHandler) Current(c *fiber.Ctx) error {
	productID, warehouseID := c.Query("product_id"), c.Query("warehouse_id")
	qty, err := h.query.CurrentStock(c.UserContext(), productID, warehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CurrentStockResponse{ProductID: productID, WarehouseID: warehouseID, Quantity: qty})
}

// Movements godoc
// @Summary      Kardex
// @Description  Historial de asientos, más reciente primero.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  false  "Producto"
// @Param        warehouse_id    query  string  false  "Bodega"
// @Param        reference_type  query  string  false  "purchase, sale, return, adjustment, transfer, opening"
// @Param        reference_id    query  string  false  "Documento"
// @Param        from            query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to              query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit           query  int     false  "Límite"  default(50)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	f := repository.LedgerFilter{
		ProductID:     c.Query("product_id"),
		WarehouseID:   c.Query("warehouse_id"),
		ReferenceType: entity.ReferenceType(c.Query("reference_type")),
		ReferenceID:   c.Query("reference_id"),
		Limit:         c.QueryInt("limit", 50),
		Offset:        c.QueryInt("offset", 0),
	}
	var err error
	if f.From, err = parseTimeQuery(c, "from", false); err != nil {
		return writeError(c, err)
	}
	if f.To, err = parseTimeQuery(c, "to", true); err != nil {
		return writeError(c, err)
	}
	list, err := h.query.ListMovements(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: dto.FromMovements(list),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	})
}

// parseTimeQuery acepta RFC3339 o fecha; una fecha usada como límite superior incluye el día completo.
func parseTimeQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.NewValidation(key, "fecha inválida")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// DocumentEntries godoc
// @Summary      Asientos de un documento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "Tipo de referencia"
// @Param        id    path  string  true  "ID del documento"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/documents/{type}/{id} [get]
func (h *StockHandler) DocumentEntries(c *fiber.Ctx) error {
	entries, err := h.query.DocumentEntries(c.UserContext(), entity.ReferenceType(c.Params("type")), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromLedgerEntry(e))
	}
	return c.JSON(out)
}

// Verify godoc
// @Summary      Verificar saldos contra el libro
// @Description  Lista los saldos cuya cantidad no coincide con la suma del libro. Vacío = consistente.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.BalanceDriftResponse
// @Router       /api/stock/verify [get]
func (h *StockHandler) Verify(c *fiber.Ctx) error {
	drifts, err := h.query.VerifyBalances(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromDrifts(drifts))
}

// Reconcile godoc
// @Summary      Conciliar la caché de cantidades de productos
// @Description  Con async=true se encola como trabajo en segundo plano.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        async  query  bool  false  "Encolar en lugar de ejecutar"
// @Success      200  {object}  dto.ReconcileResponse
// @Success      202  {object}  map[string]string
// @Router       /api/stock/reconcile [post]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	if c.QueryBool("async") && h.jobs != nil {
		info, err := h.jobs.EnqueueReconcile(c.UserContext(), jobs.ReconcilePayload{
			TenantID:     GetTenantID(c),
			Repair:       true,
			ScheduledFor: time.Now().UTC(),
		})
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task_id": info.ID})
	}
	n, err := h.query.ReconcileProductCache(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{ProductsUpdated: n})
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos en o bajo su nivel de reorden con la cantidad sugerida,
//
//	ordenados por margen histórico y volumen de ventas.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega. Vacío = stock global."
// @Success      200  {array}   dto.ReplenishmentSuggestion
// @Router       /api/stock/replenishment [get]
func (h *StockHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
