package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	domaininv "github.com/jhoicas/autotaller-api/internal/domain/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
)

type ledgerRepo struct{ st *state }

func (r *ledgerRepo) Append(_ context.Context, e *entity.LedgerEntry) error {
	if err := domaininv.ValidateEntry(e); err != nil {
		return err
	}
	cp := *e
	r.st.ledger = append(r.st.ledger, &cp)
	return nil
}

func (r *ledgerRepo) FindByReference(_ context.Context, refType entity.ReferenceType, refID string) ([]*entity.LedgerEntry, error) {
	out := []*entity.LedgerEntry{}
	for _, e := range r.st.ledger {
		if e.ReferenceType == refType && e.ReferenceID == refID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *ledgerRepo) SumByKey(_ context.Context, productID, warehouseID string, batch *string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.st.ledger {
		if e.ProductID != productID || e.WarehouseID != warehouseID {
			continue
		}
		if batch != nil && e.BatchNumber != *batch {
			continue
		}
		sum = sum.Add(e.Signed())
	}
	return sum, nil
}

func (r *ledgerRepo) SumAll(_ context.Context) (map[entity.StockKey]decimal.Decimal, error) {
	out := make(map[entity.StockKey]decimal.Decimal)
	for _, e := range r.st.ledger {
		out[e.Key()] = out[e.Key()].Add(e.Signed())
	}
	return out, nil
}

func (r *ledgerRepo) filtered(f repository.LedgerFilter) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	for i := len(r.st.ledger) - 1; i >= 0; i-- {
		e := r.st.ledger[i]
		switch {
		case f.ProductID != "" && e.ProductID != f.ProductID,
			f.WarehouseID != "" && e.WarehouseID != f.WarehouseID,
			f.ReferenceType != "" && e.ReferenceType != f.ReferenceType,
			f.ReferenceID != "" && e.ReferenceID != f.ReferenceID,
			f.From != nil && e.OccurredAt.Before(*f.From),
			f.To != nil && e.OccurredAt.After(*f.To):
			continue
		}
		out = append(out, e)
	}
	// más reciente primero; a igual fecha, el último registrado primero
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return page(out, f.Limit, f.Offset)
}

func (r *ledgerRepo) List(_ context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	rows := r.filtered(f)
	out := make([]*entity.LedgerEntry, 0, len(rows))
	for _, e := range rows {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *ledgerRepo) ListMovements(_ context.Context, f repository.LedgerFilter) ([]entity.Movement, error) {
	rows := r.filtered(f)
	out := make([]entity.Movement, 0, len(rows))
	for _, e := range rows {
		m := entity.Movement{LedgerEntry: *e}
		if p, ok := r.st.products[e.ProductID]; ok {
			m.ProductCode = p.Code
			m.ProductName = p.Name
		}
		if w, ok := r.st.warehouses[e.WarehouseID]; ok {
			m.WarehouseName = w.Name
		}
		out = append(out, m)
	}
	return out, nil
}

type positionAcc struct {
	pos                  entity.StockPosition
	costTotal, costQty   decimal.Decimal
	priceTotal, priceQty decimal.Decimal
}

func (r *ledgerRepo) Positions(_ context.Context, f repository.PositionFilter) ([]entity.StockPosition, error) {
	type key struct{ product, warehouse string }
	accs := make(map[key]*positionAcc)
	reversed := make(map[string]bool)
	for _, e := range r.st.ledger {
		if e.IsReversal() {
			reversed[e.ReversesID] = true
		}
	}
	for _, e := range r.st.ledger {
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && e.WarehouseID != f.WarehouseID {
			continue
		}
		k := key{e.ProductID, e.WarehouseID}
		a, ok := accs[k]
		if !ok {
			a = &positionAcc{pos: entity.StockPosition{ProductID: e.ProductID, WarehouseID: e.WarehouseID}}
			accs[k] = a
		}
		if e.Direction == entity.DirectionIn {
			a.pos.QuantityIn = a.pos.QuantityIn.Add(e.Quantity)
		} else {
			a.pos.QuantityOut = a.pos.QuantityOut.Add(e.Quantity)
		}
		switch {
		case e.ReferenceType == entity.ReferencePurchase && e.Direction == entity.DirectionIn:
			a.costTotal = a.costTotal.Add(e.Quantity.Mul(e.UnitCost))
			a.costQty = a.costQty.Add(e.Quantity)
		case e.ReferenceType == entity.ReferenceSale && e.Direction == entity.DirectionOut && !reversed[e.ID]:
			a.priceTotal = a.priceTotal.Add(e.Quantity.Mul(e.UnitPrice))
			a.priceQty = a.priceQty.Add(e.Quantity)
		}
	}
	out := make([]entity.StockPosition, 0, len(accs))
	for _, a := range accs {
		p := a.pos
		p.Quantity = p.QuantityIn.Sub(p.QuantityOut)
		p.AvgPurchasePrice = weightedAvg(a.costTotal, a.costQty)
		p.AvgSellingPrice = weightedAvg(a.priceTotal, a.priceQty)
		p.StockValue = p.Quantity.Mul(p.AvgPurchasePrice).Round(2)
		if pr, ok := r.st.products[p.ProductID]; ok {
			p.ProductCode = pr.Code
			p.ProductName = pr.Name
			p.Unit = pr.Unit
		}
		if w, ok := r.st.warehouses[p.WarehouseID]; ok {
			p.WarehouseName = w.Name
		}
		out = append(out, p)
	}
	col := nameCollator()
	sort.SliceStable(out, func(i, j int) bool {
		if c := col.CompareString(out[i].ProductName, out[j].ProductName); c != 0 {
			return c < 0
		}
		return col.CompareString(out[i].WarehouseName, out[j].WarehouseName) < 0
	})
	return out, nil
}
