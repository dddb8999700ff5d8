package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	cp.LastPurchaseDate = timePtr(p.LastPurchaseDate)
	cp.LastSoldDate = timePtr(p.LastSoldDate)
	return &cp
}

type productRepo struct{ st *state }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.st.products[p.ID]; ok {
		return &domain.ConflictError{Entity: "producto", Key: p.ID}
	}
	for _, o := range r.st.products {
		if o.Code == p.Code {
			return &domain.ConflictError{Entity: "producto", Key: p.Code}
		}
	}
	r.st.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *productRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	for _, p := range r.st.products {
		if p.Code == code {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	cur, ok := r.st.products[p.ID]
	if !ok {
		return domain.NewNotFound("producto", p.ID)
	}
	next := cloneProduct(p)
	// la cantidad sólo la escribe SetQuantity
	next.Quantity = cur.Quantity
	r.st.products[p.ID] = next
	return nil
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	all := make([]*entity.Product, 0, len(r.st.products))
	for _, p := range r.st.products {
		all = append(all, cloneProduct(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, limit, offset), nil
}

func (r *productRepo) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.st.products))
	for id := range r.st.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *productRepo) mutate(id string, fn func(p *entity.Product)) error {
	p, ok := r.st.products[id]
	if !ok {
		return domain.NewNotFound("producto", id)
	}
	fn(p)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *productRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	return r.mutate(id, func(p *entity.Product) { p.Cost = cost })
}

func (r *productRepo) SetQuantity(_ context.Context, id string, qty decimal.Decimal) error {
	return r.mutate(id, func(p *entity.Product) { p.Quantity = qty })
}

func (r *productRepo) TouchLastPurchase(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(p *entity.Product) { p.LastPurchaseDate = &at })
}

func (r *productRepo) TouchLastSold(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(p *entity.Product) { p.LastSoldDate = &at })
}

type warehouseRepo struct{ st *state }

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	if _, ok := r.st.warehouses[w.ID]; ok {
		return &domain.ConflictError{Entity: "bodega", Key: w.ID}
	}
	for _, o := range r.st.warehouses {
		if o.Code == w.Code {
			return &domain.ConflictError{Entity: "bodega", Key: w.Code}
		}
	}
	cp := *w
	r.st.warehouses[w.ID] = &cp
	return nil
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *warehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	all := make([]*entity.Warehouse, 0, len(r.st.warehouses))
	for _, w := range r.st.warehouses {
		cp := *w
		all = append(all, &cp)
	}
	col := nameCollator()
	sort.Slice(all, func(i, j int) bool { return col.CompareString(all[i].Name, all[j].Name) < 0 })
	return page(all, limit, offset), nil
}
