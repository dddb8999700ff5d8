package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/pkg/logger"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

// TenantLister tenants sobre los que corre el trabajo.
type TenantLister interface {
	ListActive(ctx context.Context) ([]*entity.Tenant, error)
}

// StockVerifier operaciones de verificación del motor de inventario.
type StockVerifier interface {
	VerifyBalances(ctx context.Context) ([]entity.BalanceDrift, error)
	ReconcileProductCache(ctx context.Context) (int, error)
}

// DriftRecorder publica el número de descuadres por tenant.
type DriftRecorder interface {
	SetDrifts(tenantID string, n int)
}

// ReconcileJob recorre los tenants verificando que los saldos coincidan con el libro.
type ReconcileJob struct {
	tenants     TenantLister
	stock       StockVerifier
	drifts      DriftRecorder
	log         *logger.Logger
	parallelism int
}

// NewReconcileJob construye el trabajo. drifts puede ser nil.
func NewReconcileJob(tenants TenantLister, stock StockVerifier, drifts DriftRecorder, log *logger.Logger, parallelism int) *ReconcileJob {
	if parallelism <= 0 {
		parallelism = 4
	}
	return &ReconcileJob{tenants: tenants, stock: stock, drifts: drifts, log: log, parallelism: parallelism}
}

// TenantResult resultado de la conciliación de un tenant.
type TenantResult struct {
	TenantID        string
	Drifts          int
	ProductsUpdated int
}

// Handle procesa TaskStockReconcile.
func (j *ReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	var p ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}
	_, err := j.Run(ctx, p)
	return err
}

// Run ejecuta la conciliación. Un tenant que falla no detiene a los demás; el primer error se devuelve al final.
func (j *ReconcileJob) Run(ctx context.Context, p ReconcilePayload) ([]TenantResult, error) {
	ids := []string{p.TenantID}
	if p.TenantID == "" {
		tenants, err := j.tenants.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("listar tenants: %w", err)
		}
		ids = ids[:0]
		for _, t := range tenants {
			ids = append(ids, t.ID)
		}
	}

	results := make([]TenantResult, len(ids))
	var g errgroup.Group
	g.SetLimit(j.parallelism)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			res, err := j.runTenant(tenant.WithID(ctx, id), id, p.Repair)
			results[i] = res
			if err != nil {
				j.log.Error().Err(err).Str("tenant_id", id).Msg("conciliación de stock fallida")
				return fmt.Errorf("tenant %s: %w", id, err)
			}
			return nil
		})
	}
	return results, g.Wait()
}

func (j *ReconcileJob) runTenant(ctx context.Context, tenantID string, repair bool) (TenantResult, error) {
	res := TenantResult{TenantID: tenantID}
	drifts, err := j.stock.VerifyBalances(ctx)
	if err != nil {
		return res, err
	}
	res.Drifts = len(drifts)
	if j.drifts != nil {
		j.drifts.SetDrifts(tenantID, len(drifts))
	}
	for _, d := range drifts {
		j.log.Warn().Str("tenant_id", tenantID).Str("key", d.Key.String()).
			Str("balance", d.BalanceQty.String()).Str("ledger", d.LedgerQty.String()).
			Msg("saldo descuadrado con el libro")
	}
	if repair {
		n, err := j.stock.ReconcileProductCache(ctx)
		if err != nil {
			return res, err
		}
		res.ProductsUpdated = n
	}
	j.log.Info().Str("tenant_id", tenantID).Int("drifts", res.Drifts).Int("products_updated", res.ProductsUpdated).
		Msg("conciliación de stock completada")
	return res, nil
}
