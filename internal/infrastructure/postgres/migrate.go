package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var tenantSchema string

//go:embed control_schema.sql
var controlSchema string

// MigrateTenant crea las tablas del inventario si no existen. Es idempotente.
func MigrateTenant(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, tenantSchema); err != nil {
		return fmt.Errorf("migrar esquema de tenant: %w", err)
	}
	return nil
}

// MigrateControl crea el catálogo de tenants si no existe.
func MigrateControl(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, controlSchema); err != nil {
		return fmt.Errorf("migrar esquema de control: %w", err)
	}
	return nil
}
