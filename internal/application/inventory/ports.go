package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción (o a una lectura).
type Repos struct {
	Ledger         repository.LedgerRepository
	Balances       repository.BalanceRepository
	Products       repository.ProductRepository
	Warehouses     repository.WarehouseRepository
	Purchases      repository.PurchaseRepository
	Quotations     repository.QuotationRepository
	Adjustments    repository.AdjustmentRepository
	Returns        repository.PurchaseReturnRepository
	Transfers      repository.StockTransferRepository
	PurchaseOrders repository.PurchaseOrderRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario. El tenant se toma del contexto.
type TxRunner interface {
	// Run confirma si fn devuelve nil y revierte en otro caso. Los conflictos de
	// concurrencia se reintentan un número acotado de veces; agotados, o vencido el
	// tiempo límite, se devuelve *domain.RetryableError.
	Run(ctx context.Context, op string, fn func(ctx context.Context, r Repos) error) error
	// Read ejecuta consultas sin transacción de escritura ni reintentos.
	Read(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// MovedLine línea de un evento de stock.
type MovedLine struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	BatchNumber string          `json:"batch_number,omitempty"`
	Direction   string          `json:"direction"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// StockMovedEvent se publica tras confirmar una transacción que movió stock.
type StockMovedEvent struct {
	TenantID      string      `json:"tenant_id"`
	Operation     string      `json:"operation"`
	ReferenceType string      `json:"reference_type"`
	ReferenceID   string      `json:"reference_id"`
	Lines         []MovedLine `json:"lines"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// EventPublisher publica eventos de stock hacia otros sistemas.
type EventPublisher interface {
	PublishStockMoved(ctx context.Context, ev StockMovedEvent) error
}

// PositionsCache caché de posiciones por tenant.
type PositionsCache interface {
	FetchPositions(ctx context.Context, tenantID string, f repository.PositionFilter,
		load func(ctx context.Context) ([]entity.StockPosition, error)) ([]entity.StockPosition, error)
	Invalidate(ctx context.Context, tenantID string) error
}

// Metrics contadores del motor.
type Metrics interface {
	ObserveTx(op, outcome string, elapsed time.Duration)
	AddMovement(refType entity.ReferenceType, dir entity.Direction, qty decimal.Decimal)
}

type noopPublisher struct{}

func (noopPublisher) PublishStockMoved(context.Context, StockMovedEvent) error { return nil }

type noopCache struct{}

func (noopCache) FetchPositions(ctx context.Context, _ string, _ repository.PositionFilter,
	load func(ctx context.Context) ([]entity.StockPosition, error)) ([]entity.StockPosition, error) {
	return load(ctx)
}

func (noopCache) Invalidate(context.Context, string) error { return nil }

type noopMetrics struct{}

func (noopMetrics) ObserveTx(string, string, time.Duration)                             {}
func (noopMetrics) AddMovement(entity.ReferenceType, entity.Direction, decimal.Decimal) {}
