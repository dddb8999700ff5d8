package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/validation"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// PurchaseOrderUseCase órdenes de compra y su recepción.
type PurchaseOrderUseCase struct {
	eng *Engine
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(eng *Engine) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{eng: eng}
}

// Create registra la orden en estado Pending. No mueve stock.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, userID string, in dto.CreatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	o := &entity.PurchaseOrder{
		ID:                   uuid.New().String(),
		ReferenceNo:          in.ReferenceNo,
		SupplierID:           in.SupplierID,
		WarehouseID:          in.WarehouseID,
		OrderDate:            in.OrderDate,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Status:               entity.POStatusPending,
		Shipping:             in.Shipping,
		PaymentMethod:        in.PaymentMethod,
		PaymentStatus:        "Pending",
		Note:                 in.Note,
		CreatedBy:            userID,
	}
	for _, l := range in.Lines {
		o.Lines = append(o.Lines, entity.PurchaseOrderLine{
			ProductID:   l.ProductID,
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			Tax:         l.Tax,
		})
	}
	o.ComputeTotals()

	err := uc.eng.execute(ctx, "po.create", userID, func(u *unit) error {
		if _, err := u.warehouse(o.WarehouseID); err != nil {
			return err
		}
		for i := range o.Lines {
			p, err := u.product(o.Lines[i].ProductID)
			if err != nil {
				return err
			}
			o.Lines[i].ProductName = p.Name
			o.Lines[i].Unit = p.Unit
		}
		o.OrderDate = dateOr(o.OrderDate, u.now)
		o.CreatedAt = u.now
		o.UpdatedAt = u.now
		return u.r.PurchaseOrders.Create(u.ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus avanza la máquina de estados. Pasar a Received crea la compra
// derivada (Complete) y la entrada al stock en la misma transacción.
func (uc *PurchaseOrderUseCase) UpdateStatus(ctx context.Context, userID, id string, in dto.UpdatePurchaseOrderStatusRequest) (*entity.PurchaseOrder, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	to := entity.PurchaseOrderStatus(in.Status)
	var out *entity.PurchaseOrder
	err := uc.eng.execute(ctx, "po.status", userID, func(u *unit) error {
		o, err := u.r.PurchaseOrders.GetForUpdate(u.ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NewNotFound("orden de compra", id)
		}
		if !entity.CanTransition(o.Status, to) {
			return &domain.ConflictError{Entity: "orden de compra", Key: id + ":" + string(o.Status) + "->" + string(to)}
		}
		if to == entity.POStatusReceived {
			pur := purchaseFromOrder(o, userID)
			if err := u.preparePurchase(pur); err != nil {
				return err
			}
			pur.ReceivedAt = &u.now
			if err := u.r.Purchases.Create(u.ctx, pur); err != nil {
				return err
			}
			if err := u.receivePurchase(pur); err != nil {
				return err
			}
			o.PurchaseID = pur.ID
		}
		o.Status = to
		o.UpdatedAt = u.now
		if err := u.r.PurchaseOrders.UpdateStatus(u.ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get obtiene una orden de compra por ID.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := uc.eng.tx.Read(ctx, func(ctx context.Context, r Repos) error {
		o, err := r.PurchaseOrders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NewNotFound("orden de compra", id)
		}
		out = o
		return nil
	})
	return out, err
}

func purchaseFromOrder(o *entity.PurchaseOrder, userID string) *entity.Purchase {
	p := &entity.Purchase{
		ID:              uuid.New().String(),
		ReferenceNo:     o.ReferenceNo,
		SupplierID:      o.SupplierID,
		WarehouseID:     o.WarehouseID,
		PurchaseOrderID: o.ID,
		Status:          entity.PurchaseStatusComplete,
		PaymentMethod:   o.PaymentMethod,
		Note:            o.Note,
		Shipping:        o.Shipping,
		CreatedBy:       userID,
	}
	for _, l := range o.Lines {
		p.Lines = append(p.Lines, entity.PurchaseLine{
			ProductID:   l.ProductID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitPrice,
			Discount:    l.Discount,
			Tax:         l.Tax,
		})
	}
	p.ComputeTotals()
	return p
}
