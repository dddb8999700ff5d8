package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// LedgerEntryResponse asiento del libro.
type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	BatchNumber   string          `json:"batch_number,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Direction     string          `json:"direction"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	ReversesID    string          `json:"reverses_id,omitempty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Note          string          `json:"note,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// MovementResponse asiento con nombres (kardex).
type MovementResponse struct {
	LedgerEntryResponse
	ProductCode   string `json:"product_code"`
	ProductName   string `json:"product_name"`
	WarehouseName string `json:"warehouse_name"`
}

// MovementListResponse página del kardex.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockPositionResponse posición por producto y bodega.
type StockPositionResponse struct {
	ProductID        string          `json:"product_id"`
	ProductCode      string          `json:"product_code"`
	ProductName      string          `json:"product_name"`
	Unit             string          `json:"unit"`
	WarehouseID      string          `json:"warehouse_id"`
	WarehouseName    string          `json:"warehouse_name"`
	QuantityIn       decimal.Decimal `json:"quantity_in"`
	QuantityOut      decimal.Decimal `json:"quantity_out"`
	Quantity         decimal.Decimal `json:"quantity"`
	AvgPurchasePrice decimal.Decimal `json:"avg_purchase_price"`
	AvgSellingPrice  decimal.Decimal `json:"avg_selling_price"`
	StockValue       decimal.Decimal `json:"stock_value"`
}

// CurrentStockResponse saldo desde el libro.
type CurrentStockResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// BalanceDriftResponse diferencia saldo vs libro.
type BalanceDriftResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	BatchNumber string          `json:"batch_number,omitempty"`
	BalanceQty  decimal.Decimal `json:"balance_qty"`
	LedgerQty   decimal.Decimal `json:"ledger_qty"`
}

// ReconcileResponse resultado de la conciliación de la caché de productos.
type ReconcileResponse struct {
	ProductsUpdated int `json:"products_updated"`
}

func FromLedgerEntry(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID,
		ProductID:     e.ProductID,
		WarehouseID:   e.WarehouseID,
		BatchNumber:   e.BatchNumber,
		Quantity:      e.Quantity,
		Direction:     string(e.Direction),
		ReferenceType: string(e.ReferenceType),
		ReferenceID:   e.ReferenceID,
		ReversesID:    e.ReversesID,
		UnitCost:      e.UnitCost,
		UnitPrice:     e.UnitPrice,
		Note:          e.Note,
		OccurredAt:    e.OccurredAt,
		CreatedBy:     e.CreatedBy,
	}
}

func FromMovements(list []entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for i := range list {
		m := &list[i]
		out = append(out, MovementResponse{
			LedgerEntryResponse: FromLedgerEntry(&m.LedgerEntry),
			ProductCode:         m.ProductCode,
			ProductName:         m.ProductName,
			WarehouseName:       m.WarehouseName,
		})
	}
	return out
}

func FromPositions(list []entity.StockPosition) []StockPositionResponse {
	out := make([]StockPositionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, StockPositionResponse{
			ProductID:        p.ProductID,
			ProductCode:      p.ProductCode,
			ProductName:      p.ProductName,
			Unit:             p.Unit,
			WarehouseID:      p.WarehouseID,
			WarehouseName:    p.WarehouseName,
			QuantityIn:       p.QuantityIn,
			QuantityOut:      p.QuantityOut,
			Quantity:         p.Quantity,
			AvgPurchasePrice: p.AvgPurchasePrice,
			AvgSellingPrice:  p.AvgSellingPrice,
			StockValue:       p.StockValue,
		})
	}
	return out
}

func FromDrifts(list []entity.BalanceDrift) []BalanceDriftResponse {
	out := make([]BalanceDriftResponse, 0, len(list))
	for _, d := range list {
		out = append(out, BalanceDriftResponse{
			ProductID:   d.Key.ProductID,
			WarehouseID: d.Key.WarehouseID,
			BatchNumber: d.Key.BatchNumber,
			BalanceQty:  d.BalanceQty,
			LedgerQty:   d.LedgerQty,
		})
	}
	return out
}

// ReplenishmentSuggestion producto a reponer con cantidad sugerida y prioridad (1 = más urgente).
type ReplenishmentSuggestion struct {
	ProductID           string          `json:"product_id"`
	ProductCode         string          `json:"product_code"`
	ProductName         string          `json:"product_name"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	ReorderLevel        decimal.Decimal `json:"reorder_level"`
	IdealStock          decimal.Decimal `json:"ideal_stock"`
	SuggestedOrderQty   decimal.Decimal `json:"suggested_order_qty"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"`
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"`
	UnitsSoldLast90Days decimal.Decimal `json:"units_sold_last_90_days"`
	Priority            int             `json:"priority"`
}
