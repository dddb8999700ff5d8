package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnStatus estado de la devolución a proveedor.
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusCompleted ReturnStatus = "completed"
	ReturnStatusCancelled ReturnStatus = "cancelled"
)

// ReturnLine línea devuelta al proveedor.
type ReturnLine struct {
	ProductID   string
	ProductCode string
	ProductName string
	Unit        string
	BatchNumber string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Total = cantidad * precio.
func (l ReturnLine) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// PurchaseReturn devolución de mercancía de una compra ya recibida.
type PurchaseReturn struct {
	ID                string
	ReferenceNo       string
	PurchaseID        string
	SupplierID        string
	WarehouseID       string
	ReturnDate        time.Time
	Reason            string
	Note              string
	Status            ReturnStatus
	Lines             []ReturnLine
	TotalReturnAmount decimal.Decimal
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ComputeTotals recalcula el total devuelto.
func (r *PurchaseReturn) ComputeTotals() {
	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.Total())
	}
	r.TotalReturnAmount = total
}
