package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/validation"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// AdjustmentUseCase ajustes manuales de inventario (conteos, mermas, hallazgos).
type AdjustmentUseCase struct {
	eng *Engine
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(eng *Engine) *AdjustmentUseCase {
	return &AdjustmentUseCase{eng: eng}
}

// Create aplica cada línea en orden: Addition suma (crea el saldo si falta),
// Subtraction exige saldo existente y suficiente.
func (uc *AdjustmentUseCase) Create(ctx context.Context, userID string, in dto.CreateAdjustmentRequest) (*entity.Adjustment, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	a := &entity.Adjustment{
		ID:          uuid.New().String(),
		ReferenceNo: in.ReferenceNo,
		WarehouseID: in.WarehouseID,
		Date:        in.Date,
		Note:        in.Note,
		CreatedBy:   userID,
	}
	for _, l := range in.Lines {
		a.Lines = append(a.Lines, entity.AdjustmentLine{
			ProductID:    l.ProductID,
			Type:         entity.AdjustmentType(l.Type),
			BatchNumber:  l.BatchNumber,
			SerialNumber: l.SerialNumber,
			Quantity:     l.Quantity,
		})
	}

	err := uc.eng.execute(ctx, "adjustment.create", userID, func(u *unit) error {
		if _, err := u.warehouse(a.WarehouseID); err != nil {
			return err
		}
		a.Date = dateOr(a.Date, u.now)
		a.CreatedAt = u.now
		for i := range a.Lines {
			p, err := u.product(a.Lines[i].ProductID)
			if err != nil {
				return err
			}
			a.Lines[i].ProductName = p.Name
			a.Lines[i].ProductCode = p.Code
		}
		if err := u.r.Adjustments.Create(u.ctx, a); err != nil {
			return err
		}
		for _, l := range a.Lines {
			m := move{
				key:     entity.StockKey{ProductID: l.ProductID, WarehouseID: a.WarehouseID, BatchNumber: l.BatchNumber},
				qty:     l.Quantity,
				refType: entity.ReferenceAdjustment,
				refID:   a.ID,
				note:    a.Note,
			}
			var err error
			if l.Type == entity.AdjustmentAddition {
				m.unitCost = u.products[l.ProductID].Cost
				_, err = u.receive(m)
			} else {
				_, err = u.issue(m)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
