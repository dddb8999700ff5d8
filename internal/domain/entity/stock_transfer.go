package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatusCompleted único estado que persiste el motor (traslado síncrono).
const TransferStatusCompleted = "completed"

// TransferLine producto trasladado entre bodegas.
type TransferLine struct {
	ProductID   string
	BatchNumber string
	Quantity    decimal.Decimal
	Note        string
}

// StockTransfer traslado entre bodegas. TransferNo es el identificador compartido
// por los dos asientos (salida en origen, entrada en destino) de cada línea.
type StockTransfer struct {
	ID              string
	TransferNo      string
	ReferenceNo     string
	FromWarehouseID string
	ToWarehouseID   string
	Date            time.Time
	TransferredBy   string
	Note            string
	Status          string
	Lines           []TransferLine
	CreatedAt       time.Time
}
