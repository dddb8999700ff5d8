package repository

import (
	"context"
	"time"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// Repositorios de documentos de negocio. GetForUpdate bloquea el documento
// para que dos transacciones no lo procesen a la vez.

type PurchaseRepository interface {
	Create(ctx context.Context, p *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	UpdateStatus(ctx context.Context, p *entity.Purchase) error
}

type QuotationRepository interface {
	Create(ctx context.Context, q *entity.Quotation) error
	GetByID(ctx context.Context, id string) (*entity.Quotation, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Quotation, error)
	Update(ctx context.Context, q *entity.Quotation) error
	// NextNumber siguiente consecutivo del día (1, 2, ...).
	NextNumber(ctx context.Context, day time.Time) (int, error)
}

type AdjustmentRepository interface {
	Create(ctx context.Context, a *entity.Adjustment) error
	GetByID(ctx context.Context, id string) (*entity.Adjustment, error)
}

type PurchaseReturnRepository interface {
	Create(ctx context.Context, r *entity.PurchaseReturn) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseReturn, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseReturn, error)
	Update(ctx context.Context, r *entity.PurchaseReturn) error
	// ListByPurchase devoluciones de una compra (para el tope de cantidad).
	ListByPurchase(ctx context.Context, purchaseID string) ([]*entity.PurchaseReturn, error)
}

type StockTransferRepository interface {
	Create(ctx context.Context, t *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, o *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, o *entity.PurchaseOrder) error
}
