package repository

import (
	"context"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// TenantRepository catálogo de tenants en la base de control.
type TenantRepository interface {
	GetByDomain(ctx context.Context, domain string) (*entity.Tenant, error)
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	// ListActive tenants activos (para trabajos programados).
	ListActive(ctx context.Context) ([]*entity.Tenant, error)
}
