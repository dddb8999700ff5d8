package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentType tipo de línea de ajuste.
type AdjustmentType string

const (
	AdjustmentAddition    AdjustmentType = "Addition"
	AdjustmentSubtraction AdjustmentType = "Subtraction"
)

// AdjustmentLine línea de ajuste de inventario.
type AdjustmentLine struct {
	ProductID    string
	ProductName  string
	ProductCode  string
	Type         AdjustmentType
	BatchNumber  string
	SerialNumber string
	Quantity     decimal.Decimal
}

// Adjustment ajuste manual de inventario en una bodega.
type Adjustment struct {
	ID          string
	ReferenceNo string
	WarehouseID string
	Date        time.Time
	Note        string
	Lines       []AdjustmentLine
	CreatedBy   string
	CreatedAt   time.Time
}
