package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, code, name, unit, price, cost, quantity, reorder_level,
	last_purchase_date, last_sold_date, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Unit, &p.Price, &p.Cost, &p.Quantity, &p.ReorderLevel,
		&p.LastPurchaseDate, &p.LastSoldDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. Cost y Quantity inician en 0.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, code, name, unit, price, cost, quantity, reorder_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Name, product.Unit, product.Price, product.Cost,
		product.Quantity, product.ReorderLevel, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "producto", Key: product.Code}
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by code: %w", err)
	}
	return p, nil
}

// Update actualiza los datos maestros. No toca quantity ni cost.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET code = $2, name = $3, unit = $4, price = $5, reorder_level = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Name, product.Unit, product.Price, product.ReorderLevel, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "producto", Key: product.Code}
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("producto", product.ID)
	}
	return nil
}

// List lista productos por código con paginación. limit 0 no limita.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	page, args := pageClause(limit, offset, nil)
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY code`+page, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	out := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	return r.set(ctx, productID, `cost = $2`, cost)
}

// SetQuantity escribe la caché de stock total; sólo la usa el motor.
func (r *ProductRepo) SetQuantity(ctx context.Context, productID string, qty decimal.Decimal) error {
	return r.set(ctx, productID, `quantity = $2`, qty)
}

func (r *ProductRepo) TouchLastPurchase(ctx context.Context, productID string, at time.Time) error {
	return r.set(ctx, productID, `last_purchase_date = $2`, at)
}

func (r *ProductRepo) TouchLastSold(ctx context.Context, productID string, at time.Time) error {
	return r.set(ctx, productID, `last_sold_date = $2`, at)
}

func (r *ProductRepo) set(ctx context.Context, productID, assignment string, v any) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET `+assignment+`, updated_at = now() WHERE id = $1`, productID, v)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("producto", productID)
	}
	return nil
}
