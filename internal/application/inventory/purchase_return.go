package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/validation"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	domaininv "github.com/jhoicas/autotaller-api/internal/domain/inventory"
)

// PurchaseReturnUseCase devoluciones de mercancía al proveedor.
type PurchaseReturnUseCase struct {
	eng *Engine
}

// NewPurchaseReturnUseCase construye el caso de uso.
func NewPurchaseReturnUseCase(eng *Engine) *PurchaseReturnUseCase {
	return &PurchaseReturnUseCase{eng: eng}
}

// Create registra la devolución y saca del stock cada línea de la bodega de la compra.
func (uc *PurchaseReturnUseCase) Create(ctx context.Context, userID string, in dto.SavePurchaseReturnRequest) (*entity.PurchaseReturn, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	r := &entity.PurchaseReturn{
		ID:        uuid.New().String(),
		Status:    entity.ReturnStatusCompleted,
		CreatedBy: userID,
	}
	applyReturnInput(r, in)

	err := uc.eng.execute(ctx, "return.create", userID, func(u *unit) error {
		pur, err := u.returnablePurchase(in.PurchaseID)
		if err != nil {
			return err
		}
		r.SupplierID = pur.SupplierID
		r.WarehouseID = pur.WarehouseID
		r.ReturnDate = dateOr(r.ReturnDate, u.now)
		r.CreatedAt = u.now
		r.UpdatedAt = u.now
		if err := u.fillReturnLines(r); err != nil {
			return err
		}
		if err := u.applyReturnDelta(r.ID, domaininv.Delta(nil, returnQuantities(r))); err != nil {
			return err
		}
		if err := u.checkReturnedQuantities(pur, r, ""); err != nil {
			return err
		}
		return u.r.Returns.Create(u.ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Update reemplaza las líneas y mueve sólo la diferencia por clave:
// más devuelto sale del stock, menos devuelto vuelve a entrar.
func (uc *PurchaseReturnUseCase) Update(ctx context.Context, userID, id string, in dto.SavePurchaseReturnRequest) (*entity.PurchaseReturn, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var out *entity.PurchaseReturn
	err := uc.eng.execute(ctx, "return.update", userID, func(u *unit) error {
		r, err := u.r.Returns.GetForUpdate(u.ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.NewNotFound("devolución", id)
		}
		if r.PurchaseID != in.PurchaseID {
			return domain.NewValidation("purchase_id", "no se puede cambiar la compra de una devolución")
		}
		if r.Status == entity.ReturnStatusCancelled {
			return &domain.ConflictError{Entity: "devolución", Key: id}
		}
		pur, err := u.returnablePurchase(r.PurchaseID)
		if err != nil {
			return err
		}
		prev := returnQuantities(r)
		applyReturnInput(r, in)
		r.UpdatedAt = u.now
		if err := u.fillReturnLines(r); err != nil {
			return err
		}
		if err := u.applyReturnDelta(r.ID, domaininv.Delta(prev, returnQuantities(r))); err != nil {
			return err
		}
		if err := u.checkReturnedQuantities(pur, r, r.ID); err != nil {
			return err
		}
		if err := u.r.Returns.Update(u.ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyReturnInput(r *entity.PurchaseReturn, in dto.SavePurchaseReturnRequest) {
	r.ReferenceNo = in.ReferenceNo
	r.PurchaseID = in.PurchaseID
	if !in.ReturnDate.IsZero() {
		r.ReturnDate = in.ReturnDate
	}
	r.Reason = in.Reason
	r.Note = in.Note
	r.Lines = make([]entity.ReturnLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		r.Lines = append(r.Lines, entity.ReturnLine{
			ProductID:   l.ProductID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	r.ComputeTotals()
}

func (u *unit) returnablePurchase(purchaseID string) (*entity.Purchase, error) {
	pur, err := u.r.Purchases.GetByID(u.ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if pur == nil {
		return nil, domain.NewNotFound("compra", purchaseID)
	}
	if pur.Status != entity.PurchaseStatusComplete {
		return nil, domain.NewValidation("purchase_id", "la compra no ha sido recibida")
	}
	return pur, nil
}

// fillReturnLines completa nombre, código y unidad de cada línea.
func (u *unit) fillReturnLines(r *entity.PurchaseReturn) error {
	for i := range r.Lines {
		l := &r.Lines[i]
		p, err := u.product(l.ProductID)
		if err != nil {
			return err
		}
		l.ProductName = p.Name
		l.ProductCode = p.Code
		l.Unit = p.Unit
	}
	return nil
}

// checkReturnedQuantities verifica que lo devuelto, sumado a otras devoluciones
// vigentes de la misma compra, no supere lo comprado por producto. Corre después
// de mover el stock: la falta de saldo se reporta antes que el exceso sobre la compra.
func (u *unit) checkReturnedQuantities(pur *entity.Purchase, r *entity.PurchaseReturn, excludeID string) error {
	others, err := u.r.Returns.ListByPurchase(u.ctx, pur.ID)
	if err != nil {
		return err
	}
	returned := make(map[string]decimal.Decimal)
	for _, o := range others {
		if o.ID == excludeID || o.Status == entity.ReturnStatusCancelled {
			continue
		}
		for _, l := range o.Lines {
			returned[l.ProductID] = returned[l.ProductID].Add(l.Quantity)
		}
	}
	for _, l := range r.Lines {
		returned[l.ProductID] = returned[l.ProductID].Add(l.Quantity)
	}
	for _, l := range r.Lines {
		bought := pur.QuantityOf(l.ProductID)
		if returned[l.ProductID].GreaterThan(bought) {
			return domain.NewValidation("lines", fmt.Sprintf("cantidad devuelta de %q (%s) excede lo comprado (%s)",
				l.ProductName, returned[l.ProductID].String(), bought.String()))
		}
	}
	return nil
}

func (u *unit) applyReturnDelta(returnID string, deltas []domaininv.KeyedQty) error {
	for _, d := range deltas {
		m := move{key: d.Key, refType: entity.ReferenceReturn, refID: returnID, unitPrice: d.Price}
		var err error
		if d.Quantity.IsPositive() {
			m.qty = d.Quantity
			_, err = u.issue(m)
		} else {
			m.qty = d.Quantity.Neg()
			m.note = "ajuste de devolución"
			_, err = u.receive(m)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// returnQuantities cantidades devueltas por clave, en orden de primera aparición.
func returnQuantities(r *entity.PurchaseReturn) []domaininv.KeyedQty {
	idx := make(map[entity.StockKey]int, len(r.Lines))
	out := make([]domaininv.KeyedQty, 0, len(r.Lines))
	for _, l := range r.Lines {
		k := entity.StockKey{ProductID: l.ProductID, WarehouseID: r.WarehouseID, BatchNumber: l.BatchNumber}
		if i, ok := idx[k]; ok {
			out[i].Quantity = out[i].Quantity.Add(l.Quantity)
			continue
		}
		idx[k] = len(out)
		out = append(out, domaininv.KeyedQty{Key: k, Name: l.ProductName, Quantity: l.Quantity, Price: l.UnitPrice})
	}
	return out
}
