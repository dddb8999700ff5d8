package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/validation"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	domaininv "github.com/jhoicas/autotaller-api/internal/domain/inventory"
)

// SaleUseCase registra cotizaciones del taller; los repuestos salen del stock.
type SaleUseCase struct {
	eng *Engine
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(eng *Engine) *SaleUseCase {
	return &SaleUseCase{eng: eng}
}

// Create guarda la cotización y descuenta los repuestos agrupados por
// (producto, bodega, lote). Cualquier faltante revierte todo.
func (uc *SaleUseCase) Create(ctx context.Context, userID string, in dto.SaveQuotationRequest) (*entity.Quotation, error) {
	if err := validateQuotation(in); err != nil {
		return nil, err
	}
	q := &entity.Quotation{ID: uuid.New().String(), CreatedBy: userID}
	applyQuotationInput(q, in)

	err := uc.eng.execute(ctx, "sale.create", userID, func(u *unit) error {
		seq, err := u.r.Quotations.NextNumber(u.ctx, u.now)
		if err != nil {
			return err
		}
		q.QuotationNo = fmt.Sprintf("QT-%s-%04d", u.now.Format("20060102"), seq)
		q.Date = dateOr(q.Date, u.now)
		q.CreatedAt = u.now
		q.UpdatedAt = u.now
		if err := u.prepareParts(q); err != nil {
			return err
		}
		q.ComputeTotals()
		if err := u.r.Quotations.Create(u.ctx, q); err != nil {
			return err
		}
		return u.applySale(q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Update reemplaza las líneas de una cotización: compensa cada salida vigente
// con una entrada (reverso) y aplica las nuevas líneas, todo en una transacción.
func (uc *SaleUseCase) Update(ctx context.Context, userID, id string, in dto.SaveQuotationRequest) (*entity.Quotation, error) {
	if err := validateQuotation(in); err != nil {
		return nil, err
	}
	var out *entity.Quotation
	err := uc.eng.execute(ctx, "sale.update", userID, func(u *unit) error {
		q, err := u.r.Quotations.GetForUpdate(u.ctx, id)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.NewNotFound("cotización", id)
		}
		if err := u.reverseSale(q.ID); err != nil {
			return err
		}
		applyQuotationInput(q, in)
		q.UpdatedAt = u.now
		if err := u.prepareParts(q); err != nil {
			return err
		}
		q.ComputeTotals()
		if err := u.r.Quotations.Update(u.ctx, q); err != nil {
			return err
		}
		if err := u.applySale(q); err != nil {
			return err
		}
		out = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get obtiene una cotización por ID.
func (uc *SaleUseCase) Get(ctx context.Context, id string) (*entity.Quotation, error) {
	var out *entity.Quotation
	err := uc.eng.tx.Read(ctx, func(ctx context.Context, r Repos) error {
		q, err := r.Quotations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.NewNotFound("cotización", id)
		}
		out = q
		return nil
	})
	return out, err
}

func validateQuotation(in dto.SaveQuotationRequest) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if len(in.Parts) == 0 && len(in.Services) == 0 {
		return domain.NewValidation("parts", "la cotización no tiene líneas")
	}
	return nil
}

func applyQuotationInput(q *entity.Quotation, in dto.SaveQuotationRequest) {
	q.JobNo = in.JobNo
	q.ClientType = entity.ClientType(in.ClientType)
	q.ClientID = in.ClientID
	q.VehicleID = in.VehicleID
	if !in.Date.IsZero() {
		q.Date = in.Date
	}
	q.Discount = in.Discount
	q.VAT = in.VAT
	q.Status = entity.QuotationStatus(in.Status)
	if q.Status == "" {
		q.Status = entity.QuotationStatusRunning
	}
	q.Parts = make([]entity.PartLine, 0, len(in.Parts))
	for _, l := range in.Parts {
		q.Parts = append(q.Parts, entity.PartLine{
			ProductID:   l.ProductID,
			WarehouseID: l.WarehouseID,
			BatchNumber: l.BatchNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			Rate:        l.Rate,
		})
	}
	q.Services = make([]entity.ServiceLine, 0, len(in.Services))
	for _, l := range in.Services {
		q.Services = append(q.Services, entity.ServiceLine{
			Description: l.Description,
			Unit:        l.Unit,
			Quantity:    l.Quantity,
			Rate:        l.Rate,
		})
	}
}

func (u *unit) prepareParts(q *entity.Quotation) error {
	for i := range q.Parts {
		p, err := u.product(q.Parts[i].ProductID)
		if err != nil {
			return err
		}
		q.Parts[i].ProductName = p.Name
		q.Parts[i].Unit = p.Unit
	}
	return nil
}

// applySale salida por clave agregada; los servicios no tocan el stock.
func (u *unit) applySale(q *entity.Quotation) error {
	for _, k := range domaininv.AggregateParts(q.Parts) {
		if _, err := u.issue(move{
			key: k.Key, qty: k.Quantity, refType: entity.ReferenceSale, refID: q.ID, unitPrice: k.Price,
		}); err != nil {
			return err
		}
		if err := u.r.Products.TouchLastSold(u.ctx, k.Key.ProductID, u.now); err != nil {
			return err
		}
	}
	return nil
}

// reverseSale compensa las salidas de venta de la cotización que aún no tienen reverso.
func (u *unit) reverseSale(quotationID string) error {
	entries, err := u.r.Ledger.FindByReference(u.ctx, entity.ReferenceSale, quotationID)
	if err != nil {
		return err
	}
	for _, e := range activeOutflows(entries) {
		if _, err := u.receive(move{
			key:        e.Key(),
			qty:        e.Quantity,
			refType:    entity.ReferenceSale,
			refID:      quotationID,
			reversesID: e.ID,
			unitPrice:  e.UnitPrice,
			note:       "reverso por actualización de cotización",
		}); err != nil {
			return err
		}
	}
	return nil
}

// activeOutflows salidas que no son reverso y que nadie ha compensado.
func activeOutflows(entries []*entity.LedgerEntry) []*entity.LedgerEntry {
	reversed := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsReversal() {
			reversed[e.ReversesID] = true
		}
	}
	var out []*entity.LedgerEntry
	for _, e := range entries {
		if e.Direction == entity.DirectionOut && !e.IsReversal() && !reversed[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
