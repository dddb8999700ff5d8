package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance saldo actual de un producto en una bodega y lote.
// Derivado del libro de stock; Version se usa para control optimista de concurrencia.
type StockBalance struct {
	ProductID   string
	WarehouseID string
	BatchNumber string
	Quantity    decimal.Decimal
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key devuelve la clave del saldo.
func (s *StockBalance) Key() StockKey {
	return StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID, BatchNumber: s.BatchNumber}
}
