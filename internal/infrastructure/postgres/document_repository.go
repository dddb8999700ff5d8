package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
)

// Las líneas de los documentos se guardan como JSONB: sólo se leen con el documento completo.

var (
	_ repository.PurchaseRepository       = (*PurchaseRepo)(nil)
	_ repository.QuotationRepository      = (*QuotationRepo)(nil)
	_ repository.AdjustmentRepository     = (*AdjustmentRepo)(nil)
	_ repository.PurchaseReturnRepository = (*PurchaseReturnRepo)(nil)
	_ repository.StockTransferRepository  = (*StockTransferRepo)(nil)
	_ repository.PurchaseOrderRepository  = (*PurchaseOrderRepo)(nil)
)

func insertErr(entityName, key string, err error) error {
	if isUniqueViolation(err) {
		return &domain.ConflictError{Entity: entityName, Key: key}
	}
	return fmt.Errorf("insert %s: %w", entityName, err)
}

func getErr[T any](v *T, entityName string, err error) (*T, error) {
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", entityName, err)
	}
	return v, nil
}

func updated(entityName, id string, rowsAffected int64) error {
	if rowsAffected == 0 {
		return domain.NewNotFound(entityName, id)
	}
	return nil
}

func marshalLines(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal lines: %w", err)
	}
	return b, nil
}

// ── Compras ───────────────────────────────────────────────────────────────────

type PurchaseRepo struct{ q Querier }

func NewPurchaseRepository(q Querier) *PurchaseRepo { return &PurchaseRepo{q: q} }

const purchaseSelect = `
	SELECT id, reference_no, supplier_id, warehouse_id, COALESCE(purchase_order_id::text, ''), date, status,
		payment_method, note, lines, shipping, total_amount, total_discount, total_tax, grand_total,
		received_at, created_by, created_at, updated_at
	FROM purchases WHERE id = $1`

func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	lines, err := marshalLines(p.Lines)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO purchases (id, reference_no, supplier_id, warehouse_id, purchase_order_id, date, status,
			payment_method, note, lines, shipping, total_amount, total_discount, total_tax, grand_total,
			received_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		p.ID, p.ReferenceNo, p.SupplierID, p.WarehouseID, nullIfEmpty(p.PurchaseOrderID), p.Date, string(p.Status),
		p.PaymentMethod, p.Note, lines, p.Shipping, p.TotalAmount, p.TotalDiscount, p.TotalTax, p.GrandTotal,
		p.ReceivedAt, p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return insertErr("compra", p.ID, err)
	}
	return nil
}

func (r *PurchaseRepo) scan(row pgx.Row) (*entity.Purchase, error) {
	var (
		p      entity.Purchase
		status string
		lines  []byte
	)
	err := row.Scan(&p.ID, &p.ReferenceNo, &p.SupplierID, &p.WarehouseID, &p.PurchaseOrderID, &p.Date, &status,
		&p.PaymentMethod, &p.Note, &lines, &p.Shipping, &p.TotalAmount, &p.TotalDiscount, &p.TotalTax, &p.GrandTotal,
		&p.ReceivedAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = entity.PurchaseStatus(status)
	if err := json.Unmarshal(lines, &p.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal purchase lines: %w", err)
	}
	return &p, nil
}

func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := r.scan(r.q.QueryRow(ctx, purchaseSelect, id))
	return getErr(p, "compra", err)
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := r.scan(r.q.QueryRow(ctx, purchaseSelect+` FOR UPDATE`, id))
	return getErr(p, "compra", err)
}

// UpdateStatus persiste estado, líneas y totales (una compra no Complete puede editarse).
func (r *PurchaseRepo) UpdateStatus(ctx context.Context, p *entity.Purchase) error {
	lines, err := marshalLines(p.Lines)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE purchases SET status = $2, lines = $3, shipping = $4, total_amount = $5, total_discount = $6,
			total_tax = $7, grand_total = $8, received_at = $9, note = $10, updated_at = $11
		WHERE id = $1`,
		p.ID, string(p.Status), lines, p.Shipping, p.TotalAmount, p.TotalDiscount,
		p.TotalTax, p.GrandTotal, p.ReceivedAt, p.Note, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	return updated("compra", p.ID, tag.RowsAffected())
}

// ── Cotizaciones ──────────────────────────────────────────────────────────────

type QuotationRepo struct{ q Querier }

func NewQuotationRepository(q Querier) *QuotationRepo { return &QuotationRepo{q: q} }

const quotationSelect = `
	SELECT id, quotation_no, job_no, client_type, client_id, vehicle_id, date, parts, services,
		parts_total, service_total, discount, vat, net_total, status, created_by, created_at, updated_at
	FROM quotations WHERE id = $1`

func (r *QuotationRepo) Create(ctx context.Context, q *entity.Quotation) error {
	parts, err := marshalLines(q.Parts)
	if err != nil {
		return err
	}
	services, err := marshalLines(q.Services)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO quotations (id, quotation_no, job_no, client_type, client_id, vehicle_id, date, parts, services,
			parts_total, service_total, discount, vat, net_total, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		q.ID, q.QuotationNo, q.JobNo, string(q.ClientType), q.ClientID, q.VehicleID, q.Date, parts, services,
		q.PartsTotal, q.ServiceTotal, q.Discount, q.VAT, q.NetTotal, string(q.Status), q.CreatedBy, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return quotationInsertErr(q.QuotationNo, err)
	}
	return nil
}

// quotationInsertErr una colisión de quotation_no viene de un consecutivo tomado en
// paralelo: se marca concurrente para que el ejecutor repita la transacción.
func quotationInsertErr(quotationNo string, err error) error {
	if isUniqueViolation(err) && constraintName(err) == "quotations_quotation_no_key" {
		return domain.NewConcurrentConflict("cotización", quotationNo)
	}
	return insertErr("cotización", quotationNo, err)
}

func (r *QuotationRepo) scan(row pgx.Row) (*entity.Quotation, error) {
	var (
		q                  entity.Quotation
		clientType, status string
		parts, services    []byte
	)
	err := row.Scan(&q.ID, &q.QuotationNo, &q.JobNo, &clientType, &q.ClientID, &q.VehicleID, &q.Date, &parts, &services,
		&q.PartsTotal, &q.ServiceTotal, &q.Discount, &q.VAT, &q.NetTotal, &status, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.ClientType = entity.ClientType(clientType)
	q.Status = entity.QuotationStatus(status)
	if err := json.Unmarshal(parts, &q.Parts); err != nil {
		return nil, fmt.Errorf("unmarshal quotation parts: %w", err)
	}
	if err := json.Unmarshal(services, &q.Services); err != nil {
		return nil, fmt.Errorf("unmarshal quotation services: %w", err)
	}
	return &q, nil
}

func (r *QuotationRepo) GetByID(ctx context.Context, id string) (*entity.Quotation, error) {
	q, err := r.scan(r.q.QueryRow(ctx, quotationSelect, id))
	return getErr(q, "cotización", err)
}

func (r *QuotationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Quotation, error) {
	q, err := r.scan(r.q.QueryRow(ctx, quotationSelect+` FOR UPDATE`, id))
	return getErr(q, "cotización", err)
}

func (r *QuotationRepo) Update(ctx context.Context, q *entity.Quotation) error {
	parts, err := marshalLines(q.Parts)
	if err != nil {
		return err
	}
	services, err := marshalLines(q.Services)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE quotations SET job_no = $2, client_type = $3, client_id = $4, vehicle_id = $5, date = $6,
			parts = $7, services = $8, parts_total = $9, service_total = $10, discount = $11, vat = $12,
			net_total = $13, status = $14, updated_at = $15
		WHERE id = $1`,
		q.ID, q.JobNo, string(q.ClientType), q.ClientID, q.VehicleID, q.Date,
		parts, services, q.PartsTotal, q.ServiceTotal, q.Discount, q.VAT,
		q.NetTotal, string(q.Status), q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quotation: %w", err)
	}
	return updated("cotización", q.ID, tag.RowsAffected())
}

// NextNumber toma el consecutivo del día de quotation_counters. El upsert bloquea la
// fila del día hasta el commit, así que dos ventas simultáneas no comparten número.
// La primera del día arranca desde las cotizaciones ya existentes.
func (r *QuotationRepo) NextNumber(ctx context.Context, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var n int
	err := r.q.QueryRow(ctx, `
		INSERT INTO quotation_counters (day, last_no)
		VALUES ($1::date, (SELECT COUNT(*) FROM quotations WHERE created_at >= $2 AND created_at < $3) + 1)
		ON CONFLICT (day) DO UPDATE SET last_no = quotation_counters.last_no + 1
		RETURNING last_no`,
		start.Format("2006-01-02"), start, start.AddDate(0, 0, 1)).Scan(&n)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.NewConcurrentConflict("cotización", start.Format("2006-01-02"))
		}
		return 0, fmt.Errorf("next quotation number: %w", err)
	}
	return n, nil
}

// ── Ajustes ───────────────────────────────────────────────────────────────────

type AdjustmentRepo struct{ q Querier }

func NewAdjustmentRepository(q Querier) *AdjustmentRepo { return &AdjustmentRepo{q: q} }

func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.Adjustment) error {
	lines, err := marshalLines(a.Lines)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO adjustments (id, reference_no, warehouse_id, date, note, lines, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.ReferenceNo, a.WarehouseID, a.Date, a.Note, lines, a.CreatedBy, a.CreatedAt,
	)
	if err != nil {
		return insertErr("ajuste", a.ID, err)
	}
	return nil
}

func (r *AdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.Adjustment, error) {
	var (
		a     entity.Adjustment
		lines []byte
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, reference_no, warehouse_id, date, note, lines, created_by, created_at
		FROM adjustments WHERE id = $1`, id).Scan(
		&a.ID, &a.ReferenceNo, &a.WarehouseID, &a.Date, &a.Note, &lines, &a.CreatedBy, &a.CreatedAt,
	)
	if err == nil {
		err = json.Unmarshal(lines, &a.Lines)
	}
	return getErr(&a, "ajuste", err)
}

// ── Devoluciones a proveedor ──────────────────────────────────────────────────

type PurchaseReturnRepo struct{ q Querier }

func NewPurchaseReturnRepository(q Querier) *PurchaseReturnRepo { return &PurchaseReturnRepo{q: q} }

const returnColumns = `id, reference_no, purchase_id, supplier_id, warehouse_id, return_date, reason, note,
	status, lines, total_return_amount, created_by, created_at, updated_at`

func (r *PurchaseReturnRepo) Create(ctx context.Context, pr *entity.PurchaseReturn) error {
	lines, err := marshalLines(pr.Lines)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `INSERT INTO purchase_returns (`+returnColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		pr.ID, pr.ReferenceNo, pr.PurchaseID, pr.SupplierID, pr.WarehouseID, pr.ReturnDate, pr.Reason, pr.Note,
		string(pr.Status), lines, pr.TotalReturnAmount, pr.CreatedBy, pr.CreatedAt, pr.UpdatedAt,
	)
	if err != nil {
		return insertErr("devolución", pr.ID, err)
	}
	return nil
}

func (r *PurchaseReturnRepo) scan(row pgx.Row) (*entity.PurchaseReturn, error) {
	var (
		pr     entity.PurchaseReturn
		status string
		lines  []byte
	)
	err := row.Scan(&pr.ID, &pr.ReferenceNo, &pr.PurchaseID, &pr.SupplierID, &pr.WarehouseID, &pr.ReturnDate, &pr.Reason, &pr.Note,
		&status, &lines, &pr.TotalReturnAmount, &pr.CreatedBy, &pr.CreatedAt, &pr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	pr.Status = entity.ReturnStatus(status)
	if err := json.Unmarshal(lines, &pr.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal return lines: %w", err)
	}
	return &pr, nil
}

func (r *PurchaseReturnRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseReturn, error) {
	pr, err := r.scan(r.q.QueryRow(ctx, `SELECT `+returnColumns+` FROM purchase_returns WHERE id = $1`, id))
	return getErr(pr, "devolución", err)
}

func (r *PurchaseReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseReturn, error) {
	pr, err := r.scan(r.q.QueryRow(ctx, `SELECT `+returnColumns+` FROM purchase_returns WHERE id = $1 FOR UPDATE`, id))
	return getErr(pr, "devolución", err)
}

func (r *PurchaseReturnRepo) Update(ctx context.Context, pr *entity.PurchaseReturn) error {
	lines, err := marshalLines(pr.Lines)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_returns SET reference_no = $2, return_date = $3, reason = $4, note = $5, status = $6,
			lines = $7, total_return_amount = $8, updated_at = $9
		WHERE id = $1`,
		pr.ID, pr.ReferenceNo, pr.ReturnDate, pr.Reason, pr.Note, string(pr.Status),
		lines, pr.TotalReturnAmount, pr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase return: %w", err)
	}
	return updated("devolución", pr.ID, tag.RowsAffected())
}

func (r *PurchaseReturnRepo) ListByPurchase(ctx context.Context, purchaseID string) ([]*entity.PurchaseReturn, error) {
	rows, err := r.q.Query(ctx, `SELECT `+returnColumns+` FROM purchase_returns WHERE purchase_id = $1 ORDER BY created_at`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase returns: %w", err)
	}
	defer rows.Close()
	out := []*entity.PurchaseReturn{}
	for rows.Next() {
		pr, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase return: %w", err)
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// ── Traslados ─────────────────────────────────────────────────────────────────

type StockTransferRepo struct{ q Querier }

func NewStockTransferRepository(q Querier) *StockTransferRepo { return &StockTransferRepo{q: q} }

func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	lines, err := marshalLines(t.Lines)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO stock_transfers (id, transfer_no, reference_no, from_warehouse_id, to_warehouse_id, date,
			transferred_by, note, status, lines, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.TransferNo, t.ReferenceNo, t.FromWarehouseID, t.ToWarehouseID, t.Date,
		t.TransferredBy, t.Note, t.Status, lines, t.CreatedAt,
	)
	if err != nil {
		return insertErr("traslado", t.TransferNo, err)
	}
	return nil
}

func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	var (
		t     entity.StockTransfer
		lines []byte
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, transfer_no, reference_no, from_warehouse_id, to_warehouse_id, date,
			transferred_by, note, status, lines, created_at
		FROM stock_transfers WHERE id = $1`, id).Scan(
		&t.ID, &t.TransferNo, &t.ReferenceNo, &t.FromWarehouseID, &t.ToWarehouseID, &t.Date,
		&t.TransferredBy, &t.Note, &t.Status, &lines, &t.CreatedAt,
	)
	if err == nil {
		err = json.Unmarshal(lines, &t.Lines)
	}
	return getErr(&t, "traslado", err)
}

// ── Órdenes de compra ─────────────────────────────────────────────────────────

type PurchaseOrderRepo struct{ q Querier }

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo { return &PurchaseOrderRepo{q: q} }

const orderSelect = `
	SELECT id, reference_no, supplier_id, warehouse_id, order_date, expected_delivery_date, status, lines,
		shipping, payment_method, payment_status, note, grand_total, COALESCE(purchase_id::text, ''),
		created_by, created_at, updated_at
	FROM purchase_orders WHERE id = $1`

func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	lines, err := marshalLines(o.Lines)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, reference_no, supplier_id, warehouse_id, order_date, expected_delivery_date,
			status, lines, shipping, payment_method, payment_status, note, grand_total, purchase_id,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		o.ID, o.ReferenceNo, o.SupplierID, o.WarehouseID, o.OrderDate, o.ExpectedDeliveryDate,
		string(o.Status), lines, o.Shipping, o.PaymentMethod, o.PaymentStatus, o.Note, o.GrandTotal, nullIfEmpty(o.PurchaseID),
		o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return insertErr("orden de compra", o.ID, err)
	}
	return nil
}

func (r *PurchaseOrderRepo) scan(row pgx.Row) (*entity.PurchaseOrder, error) {
	var (
		o      entity.PurchaseOrder
		status string
		lines  []byte
	)
	err := row.Scan(&o.ID, &o.ReferenceNo, &o.SupplierID, &o.WarehouseID, &o.OrderDate, &o.ExpectedDeliveryDate, &status, &lines,
		&o.Shipping, &o.PaymentMethod, &o.PaymentStatus, &o.Note, &o.GrandTotal, &o.PurchaseID,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.PurchaseOrderStatus(status)
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal order lines: %w", err)
	}
	return &o, nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	o, err := r.scan(r.q.QueryRow(ctx, orderSelect, id))
	return getErr(o, "orden de compra", err)
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	o, err := r.scan(r.q.QueryRow(ctx, orderSelect+` FOR UPDATE`, id))
	return getErr(o, "orden de compra", err)
}

func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, o *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = $2, purchase_id = $3, updated_at = $4 WHERE id = $1`,
		o.ID, string(o.Status), nullIfEmpty(o.PurchaseID), o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	return updated("orden de compra", o.ID, tag.RowsAffected())
}
