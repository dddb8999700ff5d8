package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// PurchaseResponse compra registrada.
type PurchaseResponse struct {
	ID              string                `json:"id"`
	ReferenceNo     string                `json:"reference_no"`
	SupplierID      string                `json:"supplier_id"`
	WarehouseID     string                `json:"warehouse_id"`
	PurchaseOrderID string                `json:"purchase_order_id,omitempty"`
	Date            time.Time             `json:"date"`
	Status          string                `json:"status"`
	Lines           []PurchaseLineRequest `json:"lines"`
	Shipping        decimal.Decimal       `json:"shipping"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	TotalDiscount   decimal.Decimal       `json:"total_discount"`
	TotalTax        decimal.Decimal       `json:"total_tax"`
	GrandTotal      decimal.Decimal       `json:"grand_total"`
	ReceivedAt      *time.Time            `json:"received_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

func FromPurchase(p *entity.Purchase) PurchaseResponse {
	lines := make([]PurchaseLineRequest, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, PurchaseLineRequest{
			ProductID: l.ProductID, BatchNumber: l.BatchNumber, Quantity: l.Quantity,
			UnitCost: l.UnitCost, Discount: l.Discount, Tax: l.Tax,
		})
	}
	return PurchaseResponse{
		ID: p.ID, ReferenceNo: p.ReferenceNo, SupplierID: p.SupplierID, WarehouseID: p.WarehouseID,
		PurchaseOrderID: p.PurchaseOrderID, Date: p.Date, Status: string(p.Status), Lines: lines,
		Shipping: p.Shipping, TotalAmount: p.TotalAmount, TotalDiscount: p.TotalDiscount,
		TotalTax: p.TotalTax, GrandTotal: p.GrandTotal, ReceivedAt: p.ReceivedAt, CreatedAt: p.CreatedAt,
	}
}

// QuotationResponse cotización con totales calculados.
type QuotationResponse struct {
	ID           string               `json:"id"`
	QuotationNo  string               `json:"quotation_no"`
	JobNo        string               `json:"job_no,omitempty"`
	ClientType   string               `json:"client_type,omitempty"`
	ClientID     string               `json:"client_id,omitempty"`
	VehicleID    string               `json:"vehicle_id,omitempty"`
	Date         time.Time            `json:"date"`
	Parts        []PartLineRequest    `json:"parts"`
	Services     []ServiceLineRequest `json:"services"`
	PartsTotal   decimal.Decimal      `json:"parts_total"`
	ServiceTotal decimal.Decimal      `json:"service_total"`
	Discount     decimal.Decimal      `json:"discount"`
	VAT          decimal.Decimal      `json:"vat"`
	NetTotal     decimal.Decimal      `json:"net_total"`
	Status       string               `json:"status"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func FromQuotation(q *entity.Quotation) QuotationResponse {
	parts := make([]PartLineRequest, 0, len(q.Parts))
	for _, l := range q.Parts {
		parts = append(parts, PartLineRequest{
			ProductID: l.ProductID, WarehouseID: l.WarehouseID, BatchNumber: l.BatchNumber,
			Description: l.Description, Quantity: l.Quantity, Rate: l.Rate,
		})
	}
	services := make([]ServiceLineRequest, 0, len(q.Services))
	for _, l := range q.Services {
		services = append(services, ServiceLineRequest{Description: l.Description, Unit: l.Unit, Quantity: l.Quantity, Rate: l.Rate})
	}
	return QuotationResponse{
		ID: q.ID, QuotationNo: q.QuotationNo, JobNo: q.JobNo, ClientType: string(q.ClientType),
		ClientID: q.ClientID, VehicleID: q.VehicleID, Date: q.Date, Parts: parts, Services: services,
		PartsTotal: q.PartsTotal, ServiceTotal: q.ServiceTotal, Discount: q.Discount, VAT: q.VAT,
		NetTotal: q.NetTotal, Status: string(q.Status), UpdatedAt: q.UpdatedAt,
	}
}

// AdjustmentResponse ajuste registrado.
type AdjustmentResponse struct {
	ID          string                  `json:"id"`
	ReferenceNo string                  `json:"reference_no"`
	WarehouseID string                  `json:"warehouse_id"`
	Date        time.Time               `json:"date"`
	Note        string                  `json:"note,omitempty"`
	Lines       []AdjustmentLineRequest `json:"lines"`
}

func FromAdjustment(a *entity.Adjustment) AdjustmentResponse {
	lines := make([]AdjustmentLineRequest, 0, len(a.Lines))
	for _, l := range a.Lines {
		lines = append(lines, AdjustmentLineRequest{
			ProductID: l.ProductID, Type: string(l.Type), BatchNumber: l.BatchNumber,
			SerialNumber: l.SerialNumber, Quantity: l.Quantity,
		})
	}
	return AdjustmentResponse{ID: a.ID, ReferenceNo: a.ReferenceNo, WarehouseID: a.WarehouseID, Date: a.Date, Note: a.Note, Lines: lines}
}

// PurchaseReturnResponse devolución registrada.
type PurchaseReturnResponse struct {
	ID                string              `json:"id"`
	ReferenceNo       string              `json:"reference_no"`
	PurchaseID        string              `json:"purchase_id"`
	SupplierID        string              `json:"supplier_id"`
	WarehouseID       string              `json:"warehouse_id"`
	ReturnDate        time.Time           `json:"return_date"`
	Reason            string              `json:"reason,omitempty"`
	Status            string              `json:"status"`
	Lines             []ReturnLineRequest `json:"lines"`
	TotalReturnAmount decimal.Decimal     `json:"total_return_amount"`
}

func FromPurchaseReturn(r *entity.PurchaseReturn) PurchaseReturnResponse {
	lines := make([]ReturnLineRequest, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, ReturnLineRequest{ProductID: l.ProductID, BatchNumber: l.BatchNumber, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return PurchaseReturnResponse{
		ID: r.ID, ReferenceNo: r.ReferenceNo, PurchaseID: r.PurchaseID, SupplierID: r.SupplierID,
		WarehouseID: r.WarehouseID, ReturnDate: r.ReturnDate, Reason: r.Reason, Status: string(r.Status),
		Lines: lines, TotalReturnAmount: r.TotalReturnAmount,
	}
}

// StockTransferResponse traslado registrado.
type StockTransferResponse struct {
	ID              string                `json:"id"`
	TransferNo      string                `json:"transfer_no"`
	ReferenceNo     string                `json:"reference_no,omitempty"`
	FromWarehouseID string                `json:"from_warehouse_id"`
	ToWarehouseID   string                `json:"to_warehouse_id"`
	Date            time.Time             `json:"date"`
	TransferredBy   string                `json:"transferred_by"`
	Status          string                `json:"status"`
	Lines           []TransferLineRequest `json:"lines"`
}

func FromStockTransfer(t *entity.StockTransfer) StockTransferResponse {
	lines := make([]TransferLineRequest, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, TransferLineRequest{ProductID: l.ProductID, BatchNumber: l.BatchNumber, Quantity: l.Quantity, Note: l.Note})
	}
	return StockTransferResponse{
		ID: t.ID, TransferNo: t.TransferNo, ReferenceNo: t.ReferenceNo, FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID: t.ToWarehouseID, Date: t.Date, TransferredBy: t.TransferredBy, Status: t.Status, Lines: lines,
	}
}

// PurchaseOrderResponse orden de compra.
type PurchaseOrderResponse struct {
	ID          string                     `json:"id"`
	ReferenceNo string                     `json:"reference_no"`
	SupplierID  string                     `json:"supplier_id"`
	WarehouseID string                     `json:"warehouse_id"`
	OrderDate   time.Time                  `json:"order_date"`
	Status      string                     `json:"status"`
	Lines       []PurchaseOrderLineRequest `json:"lines"`
	Shipping    decimal.Decimal            `json:"shipping"`
	GrandTotal  decimal.Decimal            `json:"grand_total"`
	PurchaseID  string                     `json:"purchase_id,omitempty"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

func FromPurchaseOrder(o *entity.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineRequest, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, PurchaseOrderLineRequest{
			ProductID: l.ProductID, BatchNumber: l.BatchNumber, ExpiryDate: l.ExpiryDate,
			Quantity: l.Quantity, UnitPrice: l.UnitPrice, Discount: l.Discount, Tax: l.Tax,
		})
	}
	return PurchaseOrderResponse{
		ID: o.ID, ReferenceNo: o.ReferenceNo, SupplierID: o.SupplierID, WarehouseID: o.WarehouseID,
		OrderDate: o.OrderDate, Status: string(o.Status), Lines: lines, Shipping: o.Shipping,
		GrandTotal: o.GrandTotal, PurchaseID: o.PurchaseID, UpdatedAt: o.UpdatedAt,
	}
}
