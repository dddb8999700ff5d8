// Package bootstrap arma las dependencias compartidas por los ejecutables.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
	"github.com/jhoicas/autotaller-api/internal/infrastructure/memory"
	"github.com/jhoicas/autotaller-api/internal/infrastructure/postgres"
	"github.com/jhoicas/autotaller-api/pkg/config"
	"github.com/jhoicas/autotaller-api/pkg/logger"
)

// Storage almacenamiento del motor según STORAGE_DRIVER.
type Storage struct {
	Tx      inventory.TxRunner
	Tenants repository.TenantRepository
	close   []func()
}

// Close libera pools y registros en orden inverso.
func (s *Storage) Close() {
	for i := len(s.close) - 1; i >= 0; i-- {
		s.close[i]()
	}
}

// OpenStorage abre PostgreSQL (base de control + un pool por tenant) o el almacén en memoria.
func OpenStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	switch cfg.App.StorageDriver {
	case "memory":
		return openMemory(cfg, log), nil
	case "postgres":
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.App.StorageDriver)
	}
}

func openMemory(cfg *config.Config, log *logger.Logger) *Storage {
	tenantID := cfg.Tenancy.DefaultTenantID
	if tenantID == "" {
		tenantID = "local"
		cfg.Tenancy.DefaultTenantID = tenantID
	}
	log.Warn().Str("tenant_id", tenantID).Msg("almacén en memoria: los datos se pierden al reiniciar")
	return &Storage{
		Tx: memory.NewStore(memory.Options{
			MaxRetries: cfg.Stock.TxMaxRetries,
			Timeout:    cfg.Stock.TxTimeout,
		}),
		Tenants: memory.NewTenants(&entity.Tenant{ID: tenantID, Domain: "localhost", IsActive: true}),
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	control, err := postgres.NewControlPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a la base de control: %w", err)
	}
	if err := postgres.MigrateControl(ctx, control); err != nil {
		control.Close()
		return nil, fmt.Errorf("migrar base de control: %w", err)
	}
	tenants := postgres.NewTenantRepository(control)
	registry := postgres.NewTenantRegistry(tenants, postgres.RegistryOptions{
		IdleTimeout: cfg.Tenancy.IdleTimeout,
		MaxConns:    cfg.Tenancy.MaxConns,
		ForceIPv4:   cfg.DB.ForceIPv4,
		Migrate:     true,
	}, log)
	tx := postgres.NewTxRunner(registry, postgres.TxOptions{
		MaxRetries: cfg.Stock.TxMaxRetries,
		Timeout:    cfg.Stock.TxTimeout,
	}, log)
	return &Storage{
		Tx:      tx,
		Tenants: tenants,
		close:   []func(){control.Close, registry.Close},
	}, nil
}
