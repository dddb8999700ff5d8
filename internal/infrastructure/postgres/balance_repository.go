package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo saldos por (producto, bodega, lote) con bloqueo de fila y versión.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Debe usarse con una tx.
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceSelect = `
	SELECT product_id, warehouse_id, batch_number, quantity, version, created_at, updated_at
	FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2 AND batch_number = $3`

// GetOrCreate inserta la fila en cero si falta y luego la bloquea.
// ON CONFLICT DO NOTHING evita abortar la tx cuando otra sesión la creó primero.
func (r *BalanceRepo) GetOrCreate(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (product_id, warehouse_id, batch_number, quantity, version)
		VALUES ($1, $2, $3, 0, 0)
		ON CONFLICT (product_id, warehouse_id, batch_number) DO NOTHING`,
		key.ProductID, key.WarehouseID, key.BatchNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("insert stock balance: %w", err)
	}
	return r.Get(ctx, key)
}

func (r *BalanceRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, balanceSelect+` FOR UPDATE`, key.ProductID, key.WarehouseID, key.BatchNumber).Scan(
		&b.ProductID, &b.WarehouseID, &b.BatchNumber, &b.Quantity, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFound("saldo", key.String())
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return &b, nil
}

// Adjust aplica delta sólo si la versión no cambió desde la lectura.
func (r *BalanceRepo) Adjust(ctx context.Context, b *entity.StockBalance, delta decimal.Decimal) error {
	next := b.Quantity.Add(delta)
	if next.IsNegative() {
		return &domain.InsufficientStockError{
			ProductID:   b.ProductID,
			WarehouseID: b.WarehouseID,
			BatchNumber: b.BatchNumber,
			Available:   b.Quantity,
			Requested:   delta.Neg(),
		}
	}
	query := `
		UPDATE stock_balances SET quantity = quantity + $4, version = version + 1, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2 AND batch_number = $3 AND version = $5
		RETURNING quantity, version, updated_at`
	err := r.q.QueryRow(ctx, query, b.ProductID, b.WarehouseID, b.BatchNumber, delta, b.Version).Scan(
		&b.Quantity, &b.Version, &b.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.NewConcurrentConflict("saldo", b.Key().String())
		}
		if isCheckViolation(err) {
			return &domain.InsufficientStockError{
				ProductID:   b.ProductID,
				WarehouseID: b.WarehouseID,
				BatchNumber: b.BatchNumber,
				Available:   b.Quantity,
				Requested:   delta.Neg(),
			}
		}
		return fmt.Errorf("adjust stock balance: %w", err)
	}
	return nil
}

func (r *BalanceRepo) SumByProduct(ctx context.Context, productID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM stock_balances WHERE product_id = $1`, productID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum stock balances: %w", err)
	}
	return sum, nil
}

func (r *BalanceRepo) List(ctx context.Context) ([]*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, warehouse_id, batch_number, quantity, version, created_at, updated_at
		FROM stock_balances ORDER BY product_id, warehouse_id, batch_number`)
	if err != nil {
		return nil, fmt.Errorf("list stock balances: %w", err)
	}
	defer rows.Close()
	out := []*entity.StockBalance{}
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ProductID, &b.WarehouseID, &b.BatchNumber, &b.Quantity, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
