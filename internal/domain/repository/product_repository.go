package repository

import (
	"context"
	"time"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Quantity sólo se escribe con SetQuantity desde la conciliación del motor.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListIDs(ctx context.Context) ([]string, error)
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	SetQuantity(ctx context.Context, productID string, qty decimal.Decimal) error
	TouchLastPurchase(ctx context.Context, productID string, at time.Time) error
	TouchLastSold(ctx context.Context, productID string, at time.Time) error
}
