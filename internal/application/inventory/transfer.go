package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/validation"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// TransferUseCase traslados entre bodegas.
type TransferUseCase struct {
	eng *Engine
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(eng *Engine) *TransferUseCase {
	return &TransferUseCase{eng: eng}
}

// Create por línea: verifica contra la suma del libro en origen, sale del origen y
// entra al destino. Ambos asientos llevan como referencia el ID del traslado.
func (uc *TransferUseCase) Create(ctx context.Context, userID string, in dto.CreateStockTransferRequest) (*entity.StockTransfer, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	t := &entity.StockTransfer{
		ID:              id,
		TransferNo:      "TR-" + strings.ToUpper(id[:8]),
		ReferenceNo:     in.ReferenceNo,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Date:            in.Date,
		TransferredBy:   userID,
		Note:            in.Note,
		Status:          entity.TransferStatusCompleted,
	}
	for _, l := range in.Lines {
		t.Lines = append(t.Lines, entity.TransferLine{
			ProductID:   l.ProductID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			Note:        l.Note,
		})
	}

	err := uc.eng.execute(ctx, "transfer.create", userID, func(u *unit) error {
		if _, err := u.warehouse(t.FromWarehouseID); err != nil {
			return err
		}
		if _, err := u.warehouse(t.ToWarehouseID); err != nil {
			return err
		}
		t.Date = dateOr(t.Date, u.now)
		t.CreatedAt = u.now
		if err := u.r.Transfers.Create(u.ctx, t); err != nil {
			return err
		}
		for _, l := range t.Lines {
			p, err := u.product(l.ProductID)
			if err != nil {
				return err
			}
			batch := l.BatchNumber
			available, err := u.r.Ledger.SumByKey(u.ctx, l.ProductID, t.FromWarehouseID, &batch)
			if err != nil {
				return err
			}
			src := entity.StockKey{ProductID: l.ProductID, WarehouseID: t.FromWarehouseID, BatchNumber: batch}
			if available.LessThan(l.Quantity) {
				return insufficient(p, src, available, l.Quantity)
			}
			note := l.Note
			if note == "" {
				note = t.Note
			}
			if _, err := u.issue(move{
				key: src, qty: l.Quantity, refType: entity.ReferenceTransfer, refID: t.ID, unitCost: p.Cost, note: note,
			}); err != nil {
				return err
			}
			dst := entity.StockKey{ProductID: l.ProductID, WarehouseID: t.ToWarehouseID, BatchNumber: batch}
			if _, err := u.receive(move{
				key: dst, qty: l.Quantity, refType: entity.ReferenceTransfer, refID: t.ID, unitCost: p.Cost, note: note,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Get obtiene un traslado por ID.
func (uc *TransferUseCase) Get(ctx context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := uc.eng.tx.Read(ctx, func(ctx context.Context, r Repos) error {
		t, err := r.Transfers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NewNotFound("traslado", id)
		}
		out = t
		return nil
	})
	return out, err
}
