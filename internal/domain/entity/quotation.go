package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotationStatus estado de la cotización / orden de trabajo.
type QuotationStatus string

const (
	QuotationStatusRunning   QuotationStatus = "running"
	QuotationStatusCompleted QuotationStatus = "completed"
)

// ClientType tipo de cliente al que se emite la cotización.
type ClientType string

const (
	ClientCustomer ClientType = "customer"
	ClientCompany  ClientType = "company"
	ClientShowRoom ClientType = "showRoom"
)

// PartLine repuesto vendido: descuenta inventario de la bodega indicada.
type PartLine struct {
	ProductID   string
	ProductName string
	WarehouseID string
	BatchNumber string
	Unit        string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal // precio de venta unitario
}

// Key clave de saldo afectada por la línea.
func (l PartLine) Key() StockKey {
	return StockKey{ProductID: l.ProductID, WarehouseID: l.WarehouseID, BatchNumber: l.BatchNumber}
}

// ServiceLine mano de obra: no afecta inventario.
type ServiceLine struct {
	Description string
	Unit        string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// Quotation cotización del taller; al guardarse registra la venta de repuestos.
type Quotation struct {
	ID           string
	QuotationNo  string
	JobNo        string
	ClientType   ClientType
	ClientID     string
	VehicleID    string
	Date         time.Time
	Parts        []PartLine
	Services     []ServiceLine
	PartsTotal   decimal.Decimal
	ServiceTotal decimal.Decimal
	Discount     decimal.Decimal // monto
	VAT          decimal.Decimal // porcentaje
	NetTotal     decimal.Decimal
	Status       QuotationStatus
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals: NetTotal = (repuestos + servicios - descuento) * (1 + IVA/100).
func (q *Quotation) ComputeTotals() {
	parts := decimal.Zero
	for _, l := range q.Parts {
		parts = parts.Add(l.Quantity.Mul(l.Rate))
	}
	services := decimal.Zero
	for _, l := range q.Services {
		services = services.Add(l.Quantity.Mul(l.Rate))
	}
	q.PartsTotal = parts
	q.ServiceTotal = services
	base := parts.Add(services).Sub(q.Discount)
	q.NetTotal = base.Add(base.Mul(q.VAT).Div(hundred)).Round(2)
}
