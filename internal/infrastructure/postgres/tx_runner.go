package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/pkg/logger"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// PoolProvider entrega el pool del tenant.
type PoolProvider interface {
	Pool(ctx context.Context, tenantID string) (*pgxpool.Pool, error)
}

// TxOptions parámetros del ejecutor.
type TxOptions struct {
	MaxRetries int
	Timeout    time.Duration
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL del tenant del contexto.
type TxRunner struct {
	pools PoolProvider
	opts  TxOptions
	log   *logger.Logger
}

// NewTxRunner construye el runner con el registro de pools.
func NewTxRunner(pools PoolProvider, opts TxOptions, log *logger.Logger) *TxRunner {
	return &TxRunner{pools: pools, opts: opts, log: log}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Serialización, deadlock y conflictos de versión se reintentan con la transacción completa.
func (r *TxRunner) Run(ctx context.Context, op string, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	tenantID := tenant.FromContext(ctx)
	pool, err := r.pools.Pool(ctx, tenantID)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= r.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			r.log.Warn().Str("tenant_id", tenantID).Str("op", op).Int("attempt", attempt).Err(lastErr).Msg("reintentando transacción")
			if err := backoff(ctx, attempt); err != nil {
				return &domain.RetryableError{Op: op, Err: err}
			}
		}
		err := r.runOnce(ctx, pool, fn)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &domain.RetryableError{Op: op, Err: ctxErr}
		}
		if !isTransient(err) && !domain.IsConcurrentConflict(err) {
			return err
		}
		lastErr = err
	}
	return &domain.RetryableError{Op: op, Err: fmt.Errorf("reintentos agotados: %w", lastErr)}
}

func (r *TxRunner) runOnce(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context, repos inventory.Repos) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Read ejecuta fn en una transacción de sólo lectura REPEATABLE READ: todas las consultas
// ven la misma instantánea.
func (r *TxRunner) Read(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	pool, err := r.pools.Pool(ctx, tenant.FromContext(ctx))
	if err != nil {
		return err
	}
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// NewRepos repositorios atados a q (pool o tx).
func NewRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Ledger:         NewLedgerRepository(q),
		Balances:       NewBalanceRepository(q),
		Products:       NewProductRepository(q),
		Warehouses:     NewWarehouseRepository(q),
		Purchases:      NewPurchaseRepository(q),
		Quotations:     NewQuotationRepository(q),
		Adjustments:    NewAdjustmentRepository(q),
		Returns:        NewPurchaseReturnRepository(q),
		Transfers:      NewStockTransferRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
	}
}

func backoff(ctx context.Context, attempt int) error {
	t := time.NewTimer(time.Duration(attempt*attempt) * 10 * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
