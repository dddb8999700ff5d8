package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra. Sólo una compra Complete tiene efecto en el stock.
type PurchaseStatus string

const (
	PurchaseStatusDraft      PurchaseStatus = "Draft"
	PurchaseStatusIncomplete PurchaseStatus = "Incomplete"
	PurchaseStatusComplete   PurchaseStatus = "Complete"
)

// PurchaseLine línea de compra (entrada de inventario).
type PurchaseLine struct {
	ProductID   string
	ProductName string
	Unit        string
	BatchNumber string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Discount    decimal.Decimal // monto
	Tax         decimal.Decimal // monto
}

// Subtotal = cantidad * costo - descuento + impuesto.
func (l PurchaseLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost).Sub(l.Discount).Add(l.Tax)
}

// Purchase compra a proveedor recibida en una bodega.
type Purchase struct {
	ID              string
	ReferenceNo     string
	SupplierID      string
	WarehouseID     string
	PurchaseOrderID string // orden de compra que la originó (si aplica)
	Date            time.Time
	Status          PurchaseStatus
	PaymentMethod   string
	Note            string
	Lines           []PurchaseLine
	Shipping        decimal.Decimal
	TotalAmount     decimal.Decimal
	TotalDiscount   decimal.Decimal
	TotalTax        decimal.Decimal
	GrandTotal      decimal.Decimal
	ReceivedAt      *time.Time
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ComputeTotals recalcula los totales desde las líneas.
func (p *Purchase) ComputeTotals() {
	var amount, discount, tax decimal.Decimal
	for _, l := range p.Lines {
		amount = amount.Add(l.Quantity.Mul(l.UnitCost))
		discount = discount.Add(l.Discount)
		tax = tax.Add(l.Tax)
	}
	p.TotalAmount = amount
	p.TotalDiscount = discount
	p.TotalTax = tax
	p.GrandTotal = amount.Sub(discount).Add(tax).Add(p.Shipping)
}

// QuantityOf cantidad total comprada de un producto (todas las líneas).
func (p *Purchase) QuantityOf(productID string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		if l.ProductID == productID {
			total = total.Add(l.Quantity)
		}
	}
	return total
}
