package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

func clonePurchase(p *entity.Purchase) *entity.Purchase {
	cp := *p
	cp.Lines = append([]entity.PurchaseLine(nil), p.Lines...)
	cp.ReceivedAt = timePtr(p.ReceivedAt)
	return &cp
}

func cloneQuotation(q *entity.Quotation) *entity.Quotation {
	cp := *q
	cp.Parts = append([]entity.PartLine(nil), q.Parts...)
	cp.Services = append([]entity.ServiceLine(nil), q.Services...)
	return &cp
}

func cloneAdjustment(a *entity.Adjustment) *entity.Adjustment {
	cp := *a
	cp.Lines = append([]entity.AdjustmentLine(nil), a.Lines...)
	return &cp
}

func cloneReturn(r *entity.PurchaseReturn) *entity.PurchaseReturn {
	cp := *r
	cp.Lines = append([]entity.ReturnLine(nil), r.Lines...)
	return &cp
}

func cloneTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	cp := *t
	cp.Lines = append([]entity.TransferLine(nil), t.Lines...)
	return &cp
}

func cloneOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	cp := *o
	cp.ExpectedDeliveryDate = timePtr(o.ExpectedDeliveryDate)
	cp.Lines = make([]entity.PurchaseOrderLine, len(o.Lines))
	for i, l := range o.Lines {
		l.ExpiryDate = timePtr(l.ExpiryDate)
		cp.Lines[i] = l
	}
	return &cp
}

type purchaseRepo struct{ st *state }

func (r *purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	if _, ok := r.st.purchases[p.ID]; ok {
		return &domain.ConflictError{Entity: "compra", Key: p.ID}
	}
	r.st.purchases[p.ID] = clonePurchase(p)
	return nil
}

func (r *purchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	p, ok := r.st.purchases[id]
	if !ok {
		return nil, nil
	}
	return clonePurchase(p), nil
}

func (r *purchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseRepo) UpdateStatus(_ context.Context, p *entity.Purchase) error {
	cur, ok := r.st.purchases[p.ID]
	if !ok {
		return domain.NewNotFound("compra", p.ID)
	}
	cur.Status = p.Status
	cur.ReceivedAt = timePtr(p.ReceivedAt)
	cur.UpdatedAt = p.UpdatedAt
	return nil
}

type quotationRepo struct{ st *state }

func (r *quotationRepo) Create(_ context.Context, q *entity.Quotation) error {
	if _, ok := r.st.quotations[q.ID]; ok {
		return &domain.ConflictError{Entity: "cotización", Key: q.ID}
	}
	for _, o := range r.st.quotations {
		if o.QuotationNo == q.QuotationNo {
			return &domain.ConflictError{Entity: "cotización", Key: q.QuotationNo}
		}
	}
	r.st.quotations[q.ID] = cloneQuotation(q)
	return nil
}

func (r *quotationRepo) GetByID(_ context.Context, id string) (*entity.Quotation, error) {
	q, ok := r.st.quotations[id]
	if !ok {
		return nil, nil
	}
	return cloneQuotation(q), nil
}

func (r *quotationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Quotation, error) {
	return r.GetByID(ctx, id)
}

func (r *quotationRepo) Update(_ context.Context, q *entity.Quotation) error {
	if _, ok := r.st.quotations[q.ID]; !ok {
		return domain.NewNotFound("cotización", q.ID)
	}
	r.st.quotations[q.ID] = cloneQuotation(q)
	return nil
}

func (r *quotationRepo) NextNumber(_ context.Context, day time.Time) (int, error) {
	y, m, d := day.Date()
	n := 0
	for _, q := range r.st.quotations {
		qy, qm, qd := q.CreatedAt.Date()
		if qy == y && qm == m && qd == d {
			n++
		}
	}
	return n + 1, nil
}

type adjustmentRepo struct{ st *state }

func (r *adjustmentRepo) Create(_ context.Context, a *entity.Adjustment) error {
	if _, ok := r.st.adjustments[a.ID]; ok {
		return &domain.ConflictError{Entity: "ajuste", Key: a.ID}
	}
	r.st.adjustments[a.ID] = cloneAdjustment(a)
	return nil
}

func (r *adjustmentRepo) GetByID(_ context.Context, id string) (*entity.Adjustment, error) {
	a, ok := r.st.adjustments[id]
	if !ok {
		return nil, nil
	}
	return cloneAdjustment(a), nil
}

type returnRepo struct{ st *state }

func (r *returnRepo) Create(_ context.Context, pr *entity.PurchaseReturn) error {
	if _, ok := r.st.returns[pr.ID]; ok {
		return &domain.ConflictError{Entity: "devolución", Key: pr.ID}
	}
	r.st.returns[pr.ID] = cloneReturn(pr)
	return nil
}

func (r *returnRepo) GetByID(_ context.Context, id string) (*entity.PurchaseReturn, error) {
	pr, ok := r.st.returns[id]
	if !ok {
		return nil, nil
	}
	return cloneReturn(pr), nil
}

func (r *returnRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseReturn, error) {
	return r.GetByID(ctx, id)
}

func (r *returnRepo) Update(_ context.Context, pr *entity.PurchaseReturn) error {
	if _, ok := r.st.returns[pr.ID]; !ok {
		return domain.NewNotFound("devolución", pr.ID)
	}
	r.st.returns[pr.ID] = cloneReturn(pr)
	return nil
}

func (r *returnRepo) ListByPurchase(_ context.Context, purchaseID string) ([]*entity.PurchaseReturn, error) {
	var out []*entity.PurchaseReturn
	for _, pr := range r.st.returns {
		if pr.PurchaseID == purchaseID {
			out = append(out, cloneReturn(pr))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type transferRepo struct{ st *state }

func (r *transferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	if _, ok := r.st.transfers[t.ID]; ok {
		return &domain.ConflictError{Entity: "traslado", Key: t.ID}
	}
	r.st.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	t, ok := r.st.transfers[id]
	if !ok {
		return nil, nil
	}
	return cloneTransfer(t), nil
}

type orderRepo struct{ st *state }

func (r *orderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	if _, ok := r.st.orders[o.ID]; ok {
		return &domain.ConflictError{Entity: "orden de compra", Key: o.ID}
	}
	r.st.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) UpdateStatus(_ context.Context, o *entity.PurchaseOrder) error {
	cur, ok := r.st.orders[o.ID]
	if !ok {
		return domain.NewNotFound("orden de compra", o.ID)
	}
	cur.Status = o.Status
	cur.PurchaseID = o.PurchaseID
	cur.UpdatedAt = o.UpdatedAt
	return nil
}
