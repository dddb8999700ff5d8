package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	domaininv "github.com/jhoicas/autotaller-api/internal/domain/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de stock sobre PostgreSQL. Sólo INSERT; un trigger impide UPDATE y DELETE.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `l.id, l.product_id, l.warehouse_id, l.batch_number, l.quantity, l.direction,
	l.reference_type, l.reference_id, l.reverses_id, l.unit_cost, l.unit_price, l.note,
	l.occurred_at, l.created_at, l.created_by`

func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	if err := domaininv.ValidateEntry(e); err != nil {
		return err
	}
	query := `
		INSERT INTO stock_ledger (id, product_id, warehouse_id, batch_number, quantity, direction,
			reference_type, reference_id, reverses_id, unit_cost, unit_price, note, occurred_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.WarehouseID, e.BatchNumber, e.Quantity, string(e.Direction),
		string(e.ReferenceType), e.ReferenceID, nullIfEmpty(e.ReversesID), e.UnitCost, e.UnitPrice, e.Note,
		e.OccurredAt, e.CreatedAt, e.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func scanEntry(row pgx.Row, extra ...any) (*entity.LedgerEntry, error) {
	var (
		e            entity.LedgerEntry
		dir, refType string
		reversesID   *string
	)
	dest := []any{
		&e.ID, &e.ProductID, &e.WarehouseID, &e.BatchNumber, &e.Quantity, &dir,
		&refType, &e.ReferenceID, &reversesID, &e.UnitCost, &e.UnitPrice, &e.Note,
		&e.OccurredAt, &e.CreatedAt, &e.CreatedBy,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	e.Direction = entity.Direction(dir)
	e.ReferenceType = entity.ReferenceType(refType)
	e.ReversesID = derefString(reversesID)
	return &e, nil
}

func (r *LedgerRepo) FindByReference(ctx context.Context, refType entity.ReferenceType, refID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM stock_ledger l WHERE l.reference_type = $1 AND l.reference_id = $2
		ORDER BY l.seq`
	rows, err := r.q.Query(ctx, query, string(refType), refID)
	if err != nil {
		return nil, fmt.Errorf("find ledger by reference: %w", err)
	}
	defer rows.Close()
	out := []*entity.LedgerEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *LedgerRepo) SumByKey(ctx context.Context, productID, warehouseID string, batch *string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END), 0)
		FROM stock_ledger WHERE product_id = $1 AND warehouse_id = $2`
	args := []any{productID, warehouseID}
	if batch != nil {
		query += ` AND batch_number = $3`
		args = append(args, *batch)
	}
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum ledger by key: %w", err)
	}
	return sum, nil
}

func (r *LedgerRepo) SumAll(ctx context.Context) (map[entity.StockKey]decimal.Decimal, error) {
	query := `
		SELECT product_id, warehouse_id, batch_number,
			SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END)
		FROM stock_ledger GROUP BY product_id, warehouse_id, batch_number`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sum ledger: %w", err)
	}
	defer rows.Close()
	out := make(map[entity.StockKey]decimal.Decimal)
	for rows.Next() {
		var (
			k   entity.StockKey
			sum decimal.Decimal
		)
		if err := rows.Scan(&k.ProductID, &k.WarehouseID, &k.BatchNumber, &sum); err != nil {
			return nil, fmt.Errorf("scan ledger sum: %w", err)
		}
		out[k] = sum
	}
	return out, rows.Err()
}

// where construye el filtro del kardex con parámetros posicionales.
func ledgerWhere(f repository.LedgerFilter) (string, []any) {
	where := ` WHERE 1=1`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.ProductID != "" {
		add("l.product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		add("l.warehouse_id = $%d", f.WarehouseID)
	}
	if f.ReferenceType != "" {
		add("l.reference_type = $%d", string(f.ReferenceType))
	}
	if f.ReferenceID != "" {
		add("l.reference_id = $%d", f.ReferenceID)
	}
	if f.From != nil {
		add("l.occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("l.occurred_at <= $%d", *f.To)
	}
	return where, args
}

func pageClause(limit, offset int, args []any) (string, []any) {
	if limit <= 0 {
		return fmt.Sprintf(" OFFSET $%d", len(args)+1), append(args, offset)
	}
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2), append(args, limit, offset)
}

func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	where, args := ledgerWhere(f)
	page, args := pageClause(f.Limit, f.Offset, args)
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger l` + where +
		` ORDER BY l.occurred_at DESC, l.seq DESC` + page
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	out := []*entity.LedgerEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *LedgerRepo) ListMovements(ctx context.Context, f repository.LedgerFilter) ([]entity.Movement, error) {
	where, args := ledgerWhere(f)
	page, args := pageClause(f.Limit, f.Offset, args)
	query := `SELECT ` + ledgerColumns + `, p.code, p.name, w.name
		FROM stock_ledger l
		JOIN products p ON p.id = l.product_id
		JOIN warehouses w ON w.id = l.warehouse_id` + where +
		` ORDER BY l.occurred_at DESC, l.seq DESC` + page
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	out := []entity.Movement{}
	for rows.Next() {
		var m entity.Movement
		e, err := scanEntry(rows, &m.ProductCode, &m.ProductName, &m.WarehouseName)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.LedgerEntry = *e
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *LedgerRepo) Positions(ctx context.Context, f repository.PositionFilter) ([]entity.StockPosition, error) {
	query := `
		WITH reversed AS (
			SELECT reverses_id AS id FROM stock_ledger WHERE reverses_id IS NOT NULL
		)
		SELECT l.product_id, p.code, p.name, p.unit, l.warehouse_id, w.name,
			COALESCE(SUM(l.quantity) FILTER (WHERE l.direction = 'in'), 0),
			COALESCE(SUM(l.quantity) FILTER (WHERE l.direction = 'out'), 0),
			COALESCE(SUM(l.quantity * l.unit_cost) FILTER (WHERE l.reference_type = 'purchase' AND l.direction = 'in'), 0),
			COALESCE(SUM(l.quantity) FILTER (WHERE l.reference_type = 'purchase' AND l.direction = 'in'), 0),
			COALESCE(SUM(l.quantity * l.unit_price) FILTER (WHERE l.reference_type = 'sale' AND l.direction = 'out'
				AND l.id NOT IN (SELECT id FROM reversed)), 0),
			COALESCE(SUM(l.quantity) FILTER (WHERE l.reference_type = 'sale' AND l.direction = 'out'
				AND l.id NOT IN (SELECT id FROM reversed)), 0)
		FROM stock_ledger l
		JOIN products p ON p.id = l.product_id
		JOIN warehouses w ON w.id = l.warehouse_id
		WHERE ($1 = '' OR l.product_id::text = $1) AND ($2 = '' OR l.warehouse_id::text = $2)
		GROUP BY l.product_id, p.code, p.name, p.unit, l.warehouse_id, w.name
		ORDER BY p.name, w.name`
	rows, err := r.q.Query(ctx, query, f.ProductID, f.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("stock positions: %w", err)
	}
	defer rows.Close()
	out := []entity.StockPosition{}
	for rows.Next() {
		var (
			p                    entity.StockPosition
			costTotal, costQty   decimal.Decimal
			priceTotal, priceQty decimal.Decimal
		)
		if err := rows.Scan(&p.ProductID, &p.ProductCode, &p.ProductName, &p.Unit, &p.WarehouseID, &p.WarehouseName,
			&p.QuantityIn, &p.QuantityOut, &costTotal, &costQty, &priceTotal, &priceQty); err != nil {
			return nil, fmt.Errorf("scan stock position: %w", err)
		}
		p.Quantity = p.QuantityIn.Sub(p.QuantityOut)
		p.AvgPurchasePrice = weightedAvg(costTotal, costQty)
		p.AvgSellingPrice = weightedAvg(priceTotal, priceQty)
		p.StockValue = p.Quantity.Mul(p.AvgPurchasePrice).Round(2)
		out = append(out, p)
	}
	return out, rows.Err()
}

func weightedAvg(total, qty decimal.Decimal) decimal.Decimal {
	if qty.IsZero() {
		return decimal.Zero
	}
	return total.DivRound(qty, 4)
}
