package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo catálogo de tenants sobre la base de control.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador con el pool de control.
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

const tenantColumns = `id, domain, db_url, is_active, created_at`

func scanTenant(row pgx.Row) (*entity.Tenant, error) {
	var t entity.Tenant
	if err := row.Scan(&t.ID, &t.Domain, &t.DBURL, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByDomain nil, nil si el dominio no está registrado.
func (r *TenantRepo) GetByDomain(ctx context.Context, domain string) (*entity.Tenant, error) {
	t, err := scanTenant(r.q.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE domain = $1`, domain))
	return getErr(t, "tenant", err)
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	t, err := scanTenant(r.q.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	return getErr(t, "tenant", err)
}

func (r *TenantRepo) ListActive(ctx context.Context) ([]*entity.Tenant, error) {
	rows, err := r.q.Query(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE is_active ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	out := []*entity.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
