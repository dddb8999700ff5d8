package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estado de la orden de compra.
type PurchaseOrderStatus string

const (
	POStatusPending   PurchaseOrderStatus = "Pending"
	POStatusApproved  PurchaseOrderStatus = "Approved"
	POStatusShipped   PurchaseOrderStatus = "Shipped"
	POStatusReceived  PurchaseOrderStatus = "Received"
	POStatusCancelled PurchaseOrderStatus = "Cancelled"
)

var poTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	POStatusPending:  {POStatusApproved, POStatusShipped, POStatusReceived, POStatusCancelled},
	POStatusApproved: {POStatusShipped, POStatusReceived, POStatusCancelled},
	POStatusShipped:  {POStatusReceived, POStatusCancelled},
}

// CanTransition indica si la orden puede pasar de from a to. Received y Cancelled son terminales.
func CanTransition(from, to PurchaseOrderStatus) bool {
	for _, s := range poTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// PurchaseOrderLine línea pedida al proveedor.
type PurchaseOrderLine struct {
	ProductID   string
	ProductName string
	Unit        string
	BatchNumber string
	ExpiryDate  *time.Time
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Tax         decimal.Decimal
}

// PurchaseOrder orden de compra; al pasar a Received genera una compra y entra al inventario.
type PurchaseOrder struct {
	ID                   string
	ReferenceNo          string
	SupplierID           string
	WarehouseID          string
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	Status               PurchaseOrderStatus
	Lines                []PurchaseOrderLine
	Shipping             decimal.Decimal
	PaymentMethod        string
	PaymentStatus        string
	Note                 string
	GrandTotal           decimal.Decimal
	PurchaseID           string // compra derivada al recibir
	CreatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ComputeTotals recalcula el total de la orden.
func (o *PurchaseOrder) ComputeTotals() {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Quantity.Mul(l.UnitPrice).Sub(l.Discount).Add(l.Tax))
	}
	o.GrandTotal = total.Add(o.Shipping)
}
