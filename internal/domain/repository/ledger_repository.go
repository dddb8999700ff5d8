package repository

import (
	"context"
	"time"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerFilter filtros del kardex. Campos vacíos no filtran.
type LedgerFilter struct {
	ProductID     string
	WarehouseID   string
	ReferenceType entity.ReferenceType
	ReferenceID   string
	From, To      *time.Time
	Limit, Offset int
}

// PositionFilter filtros del listado de posiciones de stock.
type PositionFilter struct {
	ProductID   string
	WarehouseID string
}

// LedgerRepository libro de movimientos inmutable (sólo inserción).
type LedgerRepository interface {
	// Append valida e inserta un asiento. Nunca se actualiza ni se elimina.
	Append(ctx context.Context, e *entity.LedgerEntry) error
	// FindByReference devuelve todos los asientos de un documento, en orden de registro.
	FindByReference(ctx context.Context, refType entity.ReferenceType, refID string) ([]*entity.LedgerEntry, error)
	// SumByKey cantidad neta (entradas - salidas). batch nil suma todos los lotes.
	SumByKey(ctx context.Context, productID, warehouseID string, batch *string) (decimal.Decimal, error)
	// SumAll cantidad neta por clave de saldo, para verificación y conciliación.
	SumAll(ctx context.Context) (map[entity.StockKey]decimal.Decimal, error)
	// List historial más reciente primero, paginado.
	List(ctx context.Context, f LedgerFilter) ([]*entity.LedgerEntry, error)
	// ListMovements igual que List con nombres de producto y bodega.
	ListMovements(ctx context.Context, f LedgerFilter) ([]entity.Movement, error)
	// Positions agrupa el libro por producto y bodega.
	Positions(ctx context.Context, f PositionFilter) ([]entity.StockPosition, error)
}
