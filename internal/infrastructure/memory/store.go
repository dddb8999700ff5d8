package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

// Options parámetros del ejecutor en memoria.
type Options struct {
	MaxRetries int
	Timeout    time.Duration
}

// Store almacenamiento en memoria por tenant con transacciones reales:
// cada intento trabaja sobre una copia del estado y sólo se publica si fn termina sin error.
// Las transacciones se serializan con un único mutex.
type Store struct {
	mu      sync.Mutex
	tenants map[string]*state
	opts    Options
}

// NewStore crea un almacenamiento vacío.
func NewStore(opts Options) *Store {
	return &Store{tenants: make(map[string]*state), opts: opts}
}

var _ inventory.TxRunner = (*Store)(nil)

// Run ejecuta fn en una transacción del tenant del contexto.
func (s *Store) Run(ctx context.Context, op string, fn func(ctx context.Context, r inventory.Repos) error) error {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	var lastErr error
	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		err := s.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &domain.RetryableError{Op: op, Err: ctxErr}
		}
		if !domain.IsConcurrentConflict(err) {
			return err
		}
		lastErr = err
	}
	return &domain.RetryableError{Op: op, Err: fmt.Errorf("reintentos agotados: %w", lastErr)}
}

func (s *Store) attempt(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	id := tenant.FromContext(ctx)
	work := s.tenant(id).clone()
	if err := fn(ctx, work.repos()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.tenants[id] = work
	return nil
}

// Read ejecuta fn sobre una instantánea del estado confirmado.
func (s *Store) Read(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	s.mu.Lock()
	snap := s.tenant(tenant.FromContext(ctx)).clone()
	s.mu.Unlock()
	return fn(ctx, snap.repos())
}

func (s *Store) tenant(id string) *state {
	st, ok := s.tenants[id]
	if !ok {
		st = newState()
		s.tenants[id] = st
	}
	return st
}

// state datos de un tenant.
type state struct {
	ledger      []*entity.LedgerEntry
	balances    map[entity.StockKey]*entity.StockBalance
	products    map[string]*entity.Product
	warehouses  map[string]*entity.Warehouse
	purchases   map[string]*entity.Purchase
	quotations  map[string]*entity.Quotation
	adjustments map[string]*entity.Adjustment
	returns     map[string]*entity.PurchaseReturn
	transfers   map[string]*entity.StockTransfer
	orders      map[string]*entity.PurchaseOrder
}

func newState() *state {
	return &state{
		balances:    make(map[entity.StockKey]*entity.StockBalance),
		products:    make(map[string]*entity.Product),
		warehouses:  make(map[string]*entity.Warehouse),
		purchases:   make(map[string]*entity.Purchase),
		quotations:  make(map[string]*entity.Quotation),
		adjustments: make(map[string]*entity.Adjustment),
		returns:     make(map[string]*entity.PurchaseReturn),
		transfers:   make(map[string]*entity.StockTransfer),
		orders:      make(map[string]*entity.PurchaseOrder),
	}
}

// clone copia profunda; los asientos son inmutables y se comparten.
func (st *state) clone() *state {
	c := newState()
	c.ledger = append([]*entity.LedgerEntry(nil), st.ledger...)
	for k, v := range st.balances {
		b := *v
		c.balances[k] = &b
	}
	for k, v := range st.products {
		c.products[k] = cloneProduct(v)
	}
	for k, v := range st.warehouses {
		w := *v
		c.warehouses[k] = &w
	}
	for k, v := range st.purchases {
		c.purchases[k] = clonePurchase(v)
	}
	for k, v := range st.quotations {
		c.quotations[k] = cloneQuotation(v)
	}
	for k, v := range st.adjustments {
		c.adjustments[k] = cloneAdjustment(v)
	}
	for k, v := range st.returns {
		c.returns[k] = cloneReturn(v)
	}
	for k, v := range st.transfers {
		c.transfers[k] = cloneTransfer(v)
	}
	for k, v := range st.orders {
		c.orders[k] = cloneOrder(v)
	}
	return c
}

func (st *state) repos() inventory.Repos {
	return inventory.Repos{
		Ledger:         &ledgerRepo{st: st},
		Balances:       &balanceRepo{st: st},
		Products:       &productRepo{st: st},
		Warehouses:     &warehouseRepo{st: st},
		Purchases:      &purchaseRepo{st: st},
		Quotations:     &quotationRepo{st: st},
		Adjustments:    &adjustmentRepo{st: st},
		Returns:        &returnRepo{st: st},
		Transfers:      &transferRepo{st: st},
		PurchaseOrders: &orderRepo{st: st},
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func weightedAvg(total, qty decimal.Decimal) decimal.Decimal {
	if qty.IsZero() {
		return decimal.Zero
	}
	return total.DivRound(qty, 4)
}
