package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

type balanceRepo struct{ st *state }

func (r *balanceRepo) GetOrCreate(_ context.Context, key entity.StockKey) (*entity.StockBalance, error) {
	b, ok := r.st.balances[key]
	if !ok {
		now := time.Now().UTC()
		b = &entity.StockBalance{
			ProductID: key.ProductID, WarehouseID: key.WarehouseID, BatchNumber: key.BatchNumber,
			Quantity: decimal.Zero, CreatedAt: now, UpdatedAt: now,
		}
		r.st.balances[key] = b
	}
	cp := *b
	return &cp, nil
}

func (r *balanceRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockBalance, error) {
	b, ok := r.st.balances[key]
	if !ok {
		return nil, domain.NewNotFound("saldo", key.String())
	}
	cp := *b
	return &cp, nil
}

func (r *balanceRepo) Adjust(_ context.Context, b *entity.StockBalance, delta decimal.Decimal) error {
	cur, ok := r.st.balances[b.Key()]
	if !ok {
		return domain.NewNotFound("saldo", b.Key().String())
	}
	if cur.Version != b.Version {
		return domain.NewConcurrentConflict("saldo", b.Key().String())
	}
	next := cur.Quantity.Add(delta)
	if next.IsNegative() {
		return &domain.InsufficientStockError{
			ProductID: b.ProductID, WarehouseID: b.WarehouseID, BatchNumber: b.BatchNumber,
			Available: cur.Quantity, Requested: delta.Neg(),
		}
	}
	cur.Quantity = next
	cur.Version++
	cur.UpdatedAt = time.Now().UTC()
	*b = *cur
	return nil
}

func (r *balanceRepo) SumByProduct(_ context.Context, productID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, b := range r.st.balances {
		if b.ProductID == productID {
			sum = sum.Add(b.Quantity)
		}
	}
	return sum, nil
}

func (r *balanceRepo) List(_ context.Context) ([]*entity.StockBalance, error) {
	out := make([]*entity.StockBalance, 0, len(r.st.balances))
	for _, b := range r.st.balances {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().String() < out[j].Key().String() })
	return out, nil
}

// SetQuantityForTest fuerza un saldo sin asiento; sólo para simular desvíos.
func (s *Store) SetQuantityForTest(tenantID string, key entity.StockKey, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.tenant(tenantID)
	b, ok := st.balances[key]
	if !ok {
		b = &entity.StockBalance{ProductID: key.ProductID, WarehouseID: key.WarehouseID, BatchNumber: key.BatchNumber}
		st.balances[key] = b
	}
	b.Quantity = qty
	b.Version++
}
