package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un repuesto o insumo del taller.
// Quantity es la caché desnormalizada del stock total (suma de saldos en todas las bodegas);
// sólo la escribe el motor de inventario. Cost es promedio ponderado calculado desde entradas.
type Product struct {
	ID               string
	Code             string // código único
	Name             string
	Unit             string
	Price            decimal.Decimal // precio de venta
	Cost             decimal.Decimal // costo promedio ponderado (inicia en 0)
	Quantity         decimal.Decimal
	ReorderLevel     decimal.Decimal
	LastPurchaseDate *time.Time
	LastSoldDate     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
