package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Cost y Quantity los calcula el motor.
type CreateProductRequest struct {
	Code         string          `json:"code" validate:"required,max=100"`
	Name         string          `json:"name" validate:"required,max=200"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price" validate:"gte=0"`
	ReorderLevel decimal.Decimal `json:"reorder_level" validate:"gte=0"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Cost ni Quantity).
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=200"`
	Unit         *string          `json:"unit"`
	Price        *decimal.Decimal `json:"price"`
	ReorderLevel *decimal.Decimal `json:"reorder_level"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	Price            decimal.Decimal `json:"price"`
	Cost             decimal.Decimal `json:"cost"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReorderLevel     decimal.Decimal `json:"reorder_level"`
	LastPurchaseDate *time.Time      `json:"last_purchase_date,omitempty"`
	LastSoldDate     *time.Time      `json:"last_sold_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
