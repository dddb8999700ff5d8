package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// Tenants catálogo de tenants en memoria (desarrollo y pruebas).
type Tenants struct {
	mu   sync.RWMutex
	byID map[string]*entity.Tenant
}

// NewTenants crea el catálogo con los tenants dados.
func NewTenants(ts ...*entity.Tenant) *Tenants {
	c := &Tenants{byID: make(map[string]*entity.Tenant)}
	for _, t := range ts {
		c.Put(t)
	}
	return c
}

// Put agrega o reemplaza un tenant.
func (c *Tenants) Put(t *entity.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *t
	c.byID[t.ID] = &cp
}

func (c *Tenants) GetByDomain(_ context.Context, domain string) (*entity.Tenant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.byID {
		if t.Domain == domain {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (c *Tenants) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (c *Tenants) ListActive(_ context.Context) ([]*entity.Tenant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*entity.Tenant
	for _, t := range c.byID {
		if t.IsActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
