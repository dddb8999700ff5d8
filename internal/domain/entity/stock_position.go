package entity

import "github.com/shopspring/decimal"

// StockPosition posición de stock por producto y bodega reconstruida desde el libro.
// Incluye metadatos desnormalizados para listados sin consultas adicionales.
type StockPosition struct {
	ProductID        string
	ProductCode      string
	ProductName      string
	Unit             string
	WarehouseID      string
	WarehouseName    string
	QuantityIn       decimal.Decimal
	QuantityOut      decimal.Decimal
	Quantity         decimal.Decimal
	AvgPurchasePrice decimal.Decimal
	AvgSellingPrice  decimal.Decimal
	StockValue       decimal.Decimal // Quantity * AvgPurchasePrice
}

// BalanceDrift diferencia detectada entre el saldo materializado y la suma del libro.
type BalanceDrift struct {
	Key        StockKey
	BalanceQty decimal.Decimal
	LedgerQty  decimal.Decimal
}

// Movement asiento del libro con nombres de producto y bodega (kardex).
type Movement struct {
	LedgerEntry
	ProductCode   string
	ProductName   string
	WarehouseName string
}
