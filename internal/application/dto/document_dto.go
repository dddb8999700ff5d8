package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Compras ──────────────────────────────────────────────────────────────────

// PurchaseLineRequest línea de compra.
type PurchaseLineRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	Discount    decimal.Decimal `json:"discount" validate:"gte=0"`
	Tax         decimal.Decimal `json:"tax" validate:"gte=0"`
}

// CreatePurchaseRequest body para POST /api/purchases.
// Status Draft guarda la compra sin afectar stock; se recibe luego con /receive.
type CreatePurchaseRequest struct {
	ReferenceNo   string                `json:"reference_no"`
	SupplierID    string                `json:"supplier_id" validate:"required"`
	WarehouseID   string                `json:"warehouse_id" validate:"required"`
	Date          time.Time             `json:"date"`
	Status        string                `json:"status" validate:"omitempty,oneof=Draft Incomplete Complete"`
	PaymentMethod string                `json:"payment_method"`
	Shipping      decimal.Decimal       `json:"shipping" validate:"gte=0"`
	Note          string                `json:"note"`
	Lines         []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ── Ventas (cotizaciones) ────────────────────────────────────────────────────

// PartLineRequest repuesto: descuenta stock.
type PartLineRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	BatchNumber string          `json:"batch_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

// ServiceLineRequest mano de obra: no afecta stock.
type ServiceLineRequest struct {
	Description string          `json:"description" validate:"required"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

// SaveQuotationRequest body para POST /api/quotations y PUT /api/quotations/:id.
type SaveQuotationRequest struct {
	JobNo      string               `json:"job_no"`
	ClientType string               `json:"client_type" validate:"omitempty,oneof=customer company showRoom"`
	ClientID   string               `json:"client_id"`
	VehicleID  string               `json:"vehicle_id"`
	Date       time.Time            `json:"date"`
	Parts      []PartLineRequest    `json:"parts" validate:"dive"`
	Services   []ServiceLineRequest `json:"services" validate:"dive"`
	Discount   decimal.Decimal      `json:"discount" validate:"gte=0"`
	VAT        decimal.Decimal      `json:"vat" validate:"gte=0,lte=100"`
	Status     string               `json:"status" validate:"omitempty,oneof=running completed"`
}

// ── Ajustes ──────────────────────────────────────────────────────────────────

// AdjustmentLineRequest línea de ajuste.
type AdjustmentLineRequest struct {
	ProductID    string          `json:"product_id" validate:"required"`
	Type         string          `json:"type" validate:"required,oneof=Addition Subtraction"`
	BatchNumber  string          `json:"batch_number"`
	SerialNumber string          `json:"serial_number"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// CreateAdjustmentRequest body para POST /api/adjustments.
type CreateAdjustmentRequest struct {
	ReferenceNo string                  `json:"reference_no"`
	WarehouseID string                  `json:"warehouse_id" validate:"required"`
	Date        time.Time               `json:"date"`
	Note        string                  `json:"note"`
	Lines       []AdjustmentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ── Devoluciones a proveedor ─────────────────────────────────────────────────

// ReturnLineRequest línea devuelta.
type ReturnLineRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

// SavePurchaseReturnRequest body para POST /api/purchase-returns y PUT /:id.
type SavePurchaseReturnRequest struct {
	ReferenceNo string              `json:"reference_no"`
	PurchaseID  string              `json:"purchase_id" validate:"required"`
	ReturnDate  time.Time           `json:"return_date"`
	Reason      string              `json:"reason"`
	Note        string              `json:"note"`
	Lines       []ReturnLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ── Traslados ────────────────────────────────────────────────────────────────

// TransferLineRequest producto trasladado.
type TransferLineRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Note        string          `json:"note"`
}

// CreateStockTransferRequest body para POST /api/stock-transfers.
type CreateStockTransferRequest struct {
	ReferenceNo     string                `json:"reference_no"`
	FromWarehouseID string                `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string                `json:"to_warehouse_id" validate:"required,nefield=FromWarehouseID"`
	Date            time.Time             `json:"date"`
	Note            string                `json:"note"`
	Lines           []TransferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ── Órdenes de compra ────────────────────────────────────────────────────────

// PurchaseOrderLineRequest línea pedida.
type PurchaseOrderLineRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Discount    decimal.Decimal `json:"discount" validate:"gte=0"`
	Tax         decimal.Decimal `json:"tax" validate:"gte=0"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	ReferenceNo          string                     `json:"reference_no"`
	SupplierID           string                     `json:"supplier_id" validate:"required"`
	WarehouseID          string                     `json:"warehouse_id" validate:"required"`
	OrderDate            time.Time                  `json:"order_date"`
	ExpectedDeliveryDate *time.Time                 `json:"expected_delivery_date"`
	Shipping             decimal.Decimal            `json:"shipping" validate:"gte=0"`
	PaymentMethod        string                     `json:"payment_method"`
	Note                 string                     `json:"note"`
	Lines                []PurchaseOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdatePurchaseOrderStatusRequest body para PATCH /api/purchase-orders/:id/status.
type UpdatePurchaseOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Approved Shipped Received Cancelled"`
}
