package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction sentido de un movimiento del libro de stock.
type Direction string

const (
	DirectionIn  Direction = "in"  // entrada
	DirectionOut Direction = "out" // salida
)

// ReferenceType documento de negocio que originó el movimiento.
type ReferenceType string

const (
	ReferencePurchase   ReferenceType = "purchase"
	ReferenceSale       ReferenceType = "sale"
	ReferenceReturn     ReferenceType = "return"
	ReferenceAdjustment ReferenceType = "adjustment"
	ReferenceTransfer   ReferenceType = "transfer"
	ReferenceOpening    ReferenceType = "opening"
)

// Valid indica si el tipo de referencia es conocido.
func (r ReferenceType) Valid() bool {
	switch r {
	case ReferencePurchase, ReferenceSale, ReferenceReturn, ReferenceAdjustment, ReferenceTransfer, ReferenceOpening:
		return true
	}
	return false
}

// StockKey clave de un saldo: producto + bodega + lote (vacío = sin lote).
type StockKey struct {
	ProductID   string
	WarehouseID string
	BatchNumber string
}

func (k StockKey) String() string {
	batch := k.BatchNumber
	if batch == "" {
		batch = "no-batch"
	}
	return fmt.Sprintf("%s-%s-%s", k.ProductID, k.WarehouseID, batch)
}

// LedgerEntry registro inmutable de un movimiento de inventario.
// Quantity siempre es positiva; Direction determina el signo del efecto neto.
// Las correcciones se hacen con asientos compensatorios (ReversesID), nunca borrando.
type LedgerEntry struct {
	ID            string
	ProductID     string
	WarehouseID   string
	BatchNumber   string
	Quantity      decimal.Decimal
	Direction     Direction
	ReferenceType ReferenceType
	ReferenceID   string
	ReversesID    string // ID del asiento que este compensa (vacío si no es reverso)
	UnitCost      decimal.Decimal
	UnitPrice     decimal.Decimal
	Note          string
	OccurredAt    time.Time
	CreatedAt     time.Time
	CreatedBy     string
}

// Key devuelve la clave de saldo afectada por el asiento.
func (e *LedgerEntry) Key() StockKey {
	return StockKey{ProductID: e.ProductID, WarehouseID: e.WarehouseID, BatchNumber: e.BatchNumber}
}

// Signed cantidad con signo: positiva para entradas, negativa para salidas.
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

// IsReversal indica si el asiento compensa otro.
func (e *LedgerEntry) IsReversal() bool {
	return e.ReversesID != ""
}
