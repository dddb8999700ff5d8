package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
	"github.com/jhoicas/autotaller-api/internal/infrastructure/memory"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.StockMovedEvent
}

func (p *recordingPublisher) PublishStockMoved(_ context.Context, ev inventory.StockMovedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type countingCache struct {
	mu          sync.Mutex
	invalidated int
	loads       int
}

func (c *countingCache) FetchPositions(ctx context.Context, _ string, _ repository.PositionFilter,
	load func(ctx context.Context) ([]entity.StockPosition, error)) ([]entity.StockPosition, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	return load(ctx)
}

func (c *countingCache) Invalidate(context.Context, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *memory.Store
	events    *recordingPublisher
	cache     *countingCache
	purchases *inventory.PurchaseUseCase
	sales     *inventory.SaleUseCase
	adjust    *inventory.AdjustmentUseCase
	returns   *inventory.PurchaseReturnUseCase
	transfers *inventory.TransferUseCase
	orders    *inventory.PurchaseOrderUseCase
	query     *inventory.StockQueryUseCase
	replenish *inventory.ReplenishmentUseCase
}

const (
	tenantID = "t-1"
	userID   = "u-1"
	prodA    = "prod-a"
	prodB    = "prod-b"
	whMain   = "wh-main"
	whAux    = "wh-aux"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(memory.Options{MaxRetries: 3, Timeout: 5 * time.Second})
	f := &fixture{
		t:      t,
		ctx:    tenant.WithID(context.Background(), tenantID),
		store:  store,
		events: &recordingPublisher{},
		cache:  &countingCache{},
	}
	eng := inventory.NewEngine(inventory.EngineDeps{
		Tx:     store,
		Events: f.events,
		Cache:  f.cache,
		Now:    func() time.Time { return fixedNow },
	})
	f.purchases = inventory.NewPurchaseUseCase(eng)
	f.sales = inventory.NewSaleUseCase(eng)
	f.adjust = inventory.NewAdjustmentUseCase(eng)
	f.returns = inventory.NewPurchaseReturnUseCase(eng)
	f.transfers = inventory.NewTransferUseCase(eng)
	f.orders = inventory.NewPurchaseOrderUseCase(eng)
	f.query = inventory.NewStockQueryUseCase(eng)
	f.replenish = inventory.NewReplenishmentUseCase(eng)

	err := store.Run(f.ctx, "seed", func(ctx context.Context, r inventory.Repos) error {
		for _, p := range []*entity.Product{
			{ID: prodA, Code: "FLT-001", Name: "Filtro de aceite", Unit: "und", Price: dec("150"), ReorderLevel: dec("5")},
			{ID: prodB, Code: "PST-002", Name: "Pastillas de freno", Unit: "jgo", Price: dec("300")},
		} {
			if err := r.Products.Create(ctx, p); err != nil {
				return err
			}
		}
		for _, w := range []*entity.Warehouse{
			{ID: whMain, Code: "MAIN", Name: "Principal"},
			{ID: whAux, Code: "AUX", Name: "Auxiliar"},
		} {
			if err := r.Warehouses.Create(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireQty(t *testing.T, want string, got decimal.Decimal, msg ...string) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s got %s %v", want, got.String(), msg)
}

func (f *fixture) buy(productID, warehouseID, batch, qty, cost string) *entity.Purchase {
	f.t.Helper()
	p, err := f.purchases.Create(f.ctx, userID, dto.CreatePurchaseRequest{
		SupplierID:  "sup-1",
		WarehouseID: warehouseID,
		Lines: []dto.PurchaseLineRequest{
			{ProductID: productID, BatchNumber: batch, Quantity: dec(qty), UnitCost: dec(cost)},
		},
	})
	require.NoError(f.t, err)
	return p
}

func parts(lines ...dto.PartLineRequest) dto.SaveQuotationRequest {
	return dto.SaveQuotationRequest{ClientType: "customer", Parts: lines}
}

func part(productID, warehouseID, qty string) dto.PartLineRequest {
	return dto.PartLineRequest{ProductID: productID, WarehouseID: warehouseID, Quantity: dec(qty), Rate: dec("150")}
}

func (f *fixture) balance(productID, warehouseID, batch string) decimal.Decimal {
	f.t.Helper()
	var q decimal.Decimal
	err := f.store.Read(f.ctx, func(ctx context.Context, r inventory.Repos) error {
		b, err := r.Balances.Get(ctx, entity.StockKey{ProductID: productID, WarehouseID: warehouseID, BatchNumber: batch})
		if err != nil {
			return err
		}
		q = b.Quantity
		return nil
	})
	require.NoError(f.t, err)
	return q
}

func (f *fixture) product(id string) *entity.Product {
	f.t.Helper()
	var p *entity.Product
	err := f.store.Read(f.ctx, func(ctx context.Context, r inventory.Repos) error {
		var err error
		p, err = r.Products.GetByID(ctx, id)
		return err
	})
	require.NoError(f.t, err)
	require.NotNil(f.t, p)
	return p
}

func (f *fixture) ledgerLen() int {
	f.t.Helper()
	var n int
	err := f.store.Read(f.ctx, func(ctx context.Context, r inventory.Repos) error {
		all, err := r.Ledger.List(ctx, repository.LedgerFilter{})
		n = len(all)
		return err
	})
	require.NoError(f.t, err)
	return n
}

// requireConsistent saldos igual al libro y caché de productos igual a la suma de saldos.
func (f *fixture) requireConsistent() {
	f.t.Helper()
	drifts, err := f.query.VerifyBalances(f.ctx)
	require.NoError(f.t, err)
	require.Empty(f.t, drifts)
	err = f.store.Read(f.ctx, func(ctx context.Context, r inventory.Repos) error {
		ids, err := r.Products.ListIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			sum, err := r.Balances.SumByProduct(ctx, id)
			if err != nil {
				return err
			}
			p, err := r.Products.GetByID(ctx, id)
			if err != nil {
				return err
			}
			requireQty(f.t, sum.String(), p.Quantity, "producto "+id)
		}
		return nil
	})
	require.NoError(f.t, err)
}
