package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/validation"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	domaininv "github.com/jhoicas/autotaller-api/internal/domain/inventory"
)

// PurchaseUseCase registra compras y su entrada al inventario.
type PurchaseUseCase struct {
	eng *Engine
}

// NewPurchaseUseCase construye el caso de uso.
func NewPurchaseUseCase(eng *Engine) *PurchaseUseCase {
	return &PurchaseUseCase{eng: eng}
}

// Create guarda la compra. Si su estado es Complete (por defecto) entra al stock
// en la misma transacción; Draft e Incomplete quedan pendientes de Receive.
func (uc *PurchaseUseCase) Create(ctx context.Context, userID string, in dto.CreatePurchaseRequest) (*entity.Purchase, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	p := &entity.Purchase{
		ID:            uuid.New().String(),
		ReferenceNo:   in.ReferenceNo,
		SupplierID:    in.SupplierID,
		WarehouseID:   in.WarehouseID,
		Date:          in.Date,
		Status:        entity.PurchaseStatus(in.Status),
		PaymentMethod: in.PaymentMethod,
		Note:          in.Note,
		Shipping:      in.Shipping,
		CreatedBy:     userID,
	}
	if p.Status == "" {
		p.Status = entity.PurchaseStatusComplete
	}
	for _, l := range in.Lines {
		p.Lines = append(p.Lines, entity.PurchaseLine{
			ProductID:   l.ProductID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			Discount:    l.Discount,
			Tax:         l.Tax,
		})
	}
	p.ComputeTotals()

	err := uc.eng.execute(ctx, "purchase.create", userID, func(u *unit) error {
		if err := u.preparePurchase(p); err != nil {
			return err
		}
		if p.Status == entity.PurchaseStatusComplete {
			p.ReceivedAt = &u.now
		}
		if err := u.r.Purchases.Create(u.ctx, p); err != nil {
			return err
		}
		if p.Status != entity.PurchaseStatusComplete {
			return nil
		}
		return u.receivePurchase(p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Receive aplica al stock una compra guardada como Draft o Incomplete.
// Recibir una compra ya completa devuelve ConflictError.
func (uc *PurchaseUseCase) Receive(ctx context.Context, userID, purchaseID string) (*entity.Purchase, error) {
	var out *entity.Purchase
	err := uc.eng.execute(ctx, "purchase.receive", userID, func(u *unit) error {
		p, err := u.r.Purchases.GetForUpdate(u.ctx, purchaseID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NewNotFound("compra", purchaseID)
		}
		if p.Status == entity.PurchaseStatusComplete {
			return &domain.ConflictError{Entity: "compra", Key: purchaseID}
		}
		if err := u.receivePurchase(p); err != nil {
			return err
		}
		p.Status = entity.PurchaseStatusComplete
		p.ReceivedAt = &u.now
		p.UpdatedAt = u.now
		if err := u.r.Purchases.UpdateStatus(u.ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get obtiene una compra por ID.
func (uc *PurchaseUseCase) Get(ctx context.Context, id string) (*entity.Purchase, error) {
	var out *entity.Purchase
	err := uc.eng.tx.Read(ctx, func(ctx context.Context, r Repos) error {
		p, err := r.Purchases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NewNotFound("compra", id)
		}
		out = p
		return nil
	})
	return out, err
}

// preparePurchase verifica bodega y productos y completa los datos de línea.
func (u *unit) preparePurchase(p *entity.Purchase) error {
	if _, err := u.warehouse(p.WarehouseID); err != nil {
		return err
	}
	for i := range p.Lines {
		pr, err := u.product(p.Lines[i].ProductID)
		if err != nil {
			return err
		}
		p.Lines[i].ProductName = pr.Name
		p.Lines[i].Unit = pr.Unit
	}
	if p.Date.IsZero() {
		p.Date = u.now
	}
	p.CreatedAt = u.now
	p.UpdatedAt = u.now
	return nil
}

// receivePurchase entrada por línea: costo promedio, saldo, asiento y fecha de última compra.
func (u *unit) receivePurchase(p *entity.Purchase) error {
	for _, l := range p.Lines {
		pr, err := u.product(l.ProductID)
		if err != nil {
			return err
		}
		onHand, err := u.r.Balances.SumByProduct(u.ctx, l.ProductID)
		if err != nil {
			return err
		}
		cost := domaininv.WeightedAverageCost(onHand, pr.Cost, l.Quantity, l.UnitCost)
		key := entity.StockKey{ProductID: l.ProductID, WarehouseID: p.WarehouseID, BatchNumber: l.BatchNumber}
		if _, err := u.receive(move{
			key: key, qty: l.Quantity, refType: entity.ReferencePurchase, refID: p.ID, unitCost: l.UnitCost,
		}); err != nil {
			return err
		}
		if err := u.r.Products.UpdateCost(u.ctx, pr.ID, cost); err != nil {
			return err
		}
		pr.Cost = cost
		if err := u.r.Products.TouchLastPurchase(u.ctx, pr.ID, u.now); err != nil {
			return err
		}
	}
	return nil
}

func dateOr(t, def time.Time) time.Time {
	if t.IsZero() {
		return def
	}
	return t
}
