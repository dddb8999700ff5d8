package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
	"github.com/jhoicas/autotaller-api/pkg/logger"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

// EngineDeps dependencias del motor. Sólo Tx es obligatorio.
type EngineDeps struct {
	Tx      TxRunner
	Events  EventPublisher
	Cache   PositionsCache
	Metrics Metrics
	Log     *logger.Logger
	Now     func() time.Time
}

// Engine núcleo transaccional compartido por los casos de uso de documentos:
// abre la unidad de trabajo, concilia la caché de productos antes del commit y
// después del commit invalida la caché de posiciones y publica el evento.
type Engine struct {
	tx      TxRunner
	events  EventPublisher
	cache   PositionsCache
	metrics Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewEngine construye el motor con dependencias opcionales en no-op.
func NewEngine(d EngineDeps) *Engine {
	e := &Engine{tx: d.Tx, events: d.Events, cache: d.Cache, metrics: d.Metrics, log: d.Log, now: d.Now}
	if e.events == nil {
		e.events = noopPublisher{}
	}
	if e.cache == nil {
		e.cache = noopCache{}
	}
	if e.metrics == nil {
		e.metrics = noopMetrics{}
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

func (e *Engine) execute(ctx context.Context, op, userID string, fn func(u *unit) error) error {
	start := time.Now()
	tenantID := tenant.FromContext(ctx)
	log := e.log.Op(tenantID, op)

	var committed *unit
	err := e.tx.Run(ctx, op, func(ctx context.Context, r Repos) error {
		u := newUnit(ctx, r, e.now().UTC(), userID)
		if err := fn(u); err != nil {
			return err
		}
		if err := u.syncProducts(); err != nil {
			return err
		}
		committed = u
		return nil
	})
	if err != nil {
		outcome := outcomeOf(err)
		e.metrics.ObserveTx(op, outcome, time.Since(start))
		if outcome == "error" {
			log.Error().Err(err).Msg("transacción abortada")
		} else {
			log.Warn().Err(err).Str("outcome", outcome).Msg("transacción abortada")
		}
		return err
	}
	e.metrics.ObserveTx(op, "commit", time.Since(start))
	log.Info().Str("reference_id", committed.referenceID()).Int("entries", len(committed.entries)).Msg("transacción confirmada")
	e.afterCommit(ctx, tenantID, op, committed)
	return nil
}

func (e *Engine) afterCommit(ctx context.Context, tenantID, op string, u *unit) {
	if len(u.entries) == 0 {
		return
	}
	for _, en := range u.entries {
		e.metrics.AddMovement(en.ReferenceType, en.Direction, en.Quantity)
	}
	if err := e.cache.Invalidate(ctx, tenantID); err != nil {
		e.log.Error().Err(err).Str("tenant_id", tenantID).Msg("invalidar caché de posiciones")
	}
	ev := StockMovedEvent{
		TenantID:      tenantID,
		Operation:     op,
		ReferenceType: string(u.entries[0].ReferenceType),
		ReferenceID:   u.entries[0].ReferenceID,
		OccurredAt:    u.now,
		Lines:         make([]MovedLine, 0, len(u.entries)),
	}
	for _, en := range u.entries {
		ev.Lines = append(ev.Lines, MovedLine{
			ProductID: en.ProductID, WarehouseID: en.WarehouseID, BatchNumber: en.BatchNumber,
			Direction: string(en.Direction), Quantity: en.Quantity,
		})
	}
	if err := e.events.PublishStockMoved(ctx, ev); err != nil {
		e.log.Error().Err(err).Str("tenant_id", tenantID).Str("op", op).Msg("publicar stock.moved")
	}
}

// outcomeOf clasifica un error para métricas y nivel de log.
func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrRetryable):
		return "retry_exhausted"
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidInput):
		return "rejected"
	}
	return "error"
}

// move un movimiento a registrar en el libro.
type move struct {
	key        entity.StockKey
	qty        decimal.Decimal
	refType    entity.ReferenceType
	refID      string
	reversesID string
	unitCost   decimal.Decimal
	unitPrice  decimal.Decimal
	note       string
}

// unit estado de una unidad de trabajo (un intento de transacción).
type unit struct {
	ctx        context.Context
	r          Repos
	now        time.Time
	userID     string
	entries    []*entity.LedgerEntry
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	touched    map[string]struct{}
}

func newUnit(ctx context.Context, r Repos, now time.Time, userID string) *unit {
	return &unit{
		ctx:        ctx,
		r:          r,
		now:        now,
		userID:     userID,
		products:   make(map[string]*entity.Product),
		warehouses: make(map[string]*entity.Warehouse),
		touched:    make(map[string]struct{}),
	}
}

func (u *unit) referenceID() string {
	if len(u.entries) == 0 {
		return ""
	}
	return u.entries[0].ReferenceID
}

func (u *unit) product(id string) (*entity.Product, error) {
	if p, ok := u.products[id]; ok {
		return p, nil
	}
	p, err := u.r.Products.GetByID(u.ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewNotFound("producto", id)
	}
	u.products[id] = p
	return p, nil
}

func (u *unit) warehouse(id string) (*entity.Warehouse, error) {
	if w, ok := u.warehouses[id]; ok {
		return w, nil
	}
	w, err := u.r.Warehouses.GetByID(u.ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NewNotFound("bodega", id)
	}
	u.warehouses[id] = w
	return w, nil
}

// receive entrada: crea el saldo si no existe, suma y registra el asiento.
func (u *unit) receive(m move) (*entity.LedgerEntry, error) {
	if _, err := u.product(m.key.ProductID); err != nil {
		return nil, err
	}
	if _, err := u.warehouse(m.key.WarehouseID); err != nil {
		return nil, err
	}
	b, err := u.r.Balances.GetOrCreate(u.ctx, m.key)
	if err != nil {
		return nil, err
	}
	if err := u.r.Balances.Adjust(u.ctx, b, m.qty); err != nil {
		return nil, err
	}
	return u.append(m, entity.DirectionIn)
}

// issue salida: el saldo debe existir y alcanzar; resta y registra el asiento.
func (u *unit) issue(m move) (*entity.LedgerEntry, error) {
	p, err := u.product(m.key.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := u.warehouse(m.key.WarehouseID); err != nil {
		return nil, err
	}
	b, err := u.r.Balances.Get(u.ctx, m.key)
	if err != nil {
		return nil, err
	}
	if b.Quantity.LessThan(m.qty) {
		return nil, insufficient(p, m.key, b.Quantity, m.qty)
	}
	if err := u.r.Balances.Adjust(u.ctx, b, m.qty.Neg()); err != nil {
		return nil, err
	}
	return u.append(m, entity.DirectionOut)
}

func (u *unit) append(m move, dir entity.Direction) (*entity.LedgerEntry, error) {
	e := &entity.LedgerEntry{
		ID:            uuid.New().String(),
		ProductID:     m.key.ProductID,
		WarehouseID:   m.key.WarehouseID,
		BatchNumber:   m.key.BatchNumber,
		Quantity:      m.qty,
		Direction:     dir,
		ReferenceType: m.refType,
		ReferenceID:   m.refID,
		ReversesID:    m.reversesID,
		UnitCost:      m.unitCost,
		UnitPrice:     m.unitPrice,
		Note:          m.note,
		OccurredAt:    u.now,
		CreatedAt:     u.now,
		CreatedBy:     u.userID,
	}
	if err := u.r.Ledger.Append(u.ctx, e); err != nil {
		return nil, err
	}
	u.entries = append(u.entries, e)
	u.touched[e.ProductID] = struct{}{}
	return e, nil
}

// syncProducts recalcula la caché de cantidad de los productos tocados desde sus saldos.
func (u *unit) syncProducts() error {
	if len(u.touched) == 0 {
		return nil
	}
	sums := make(map[string]decimal.Decimal, len(u.touched))
	for id := range u.touched {
		s, err := u.r.Balances.SumByProduct(u.ctx, id)
		if err != nil {
			return err
		}
		sums[id] = s
	}
	return syncProductQuantities(u.ctx, u.r.Products, sums)
}

// syncProductQuantities es el único punto que escribe products.quantity.
// Los productos se escriben en orden de ID para un orden de bloqueo estable.
func syncProductQuantities(ctx context.Context, products repository.ProductRepository, sums map[string]decimal.Decimal) error {
	ids := make([]string, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := products.SetQuantity(ctx, id, sums[id]); err != nil {
			return err
		}
	}
	return nil
}

func insufficient(p *entity.Product, key entity.StockKey, available, requested decimal.Decimal) *domain.InsufficientStockError {
	return &domain.InsufficientStockError{
		ProductID:   key.ProductID,
		ProductName: p.Name,
		WarehouseID: key.WarehouseID,
		BatchNumber: key.BatchNumber,
		Available:   available,
		Requested:   requested,
	}
}
