package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

func TestQuery_CurrentStockSumsAllBatches(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "L1", "3", "100")
	f.buy(prodA, whMain, "L2", "4", "100")
	f.buy(prodA, whAux, "", "9", "100")

	qty, err := f.query.CurrentStock(f.ctx, prodA, whMain)
	require.NoError(t, err)
	requireQty(t, "7", qty)

	_, err = f.query.CurrentStock(f.ctx, "", whMain)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQuery_StockPositions(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")
	f.buy(prodA, whMain, "", "10", "200")
	_, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "5")))
	require.NoError(t, err)
	f.buy(prodB, whAux, "", "1", "300")

	list, err := f.query.ListStockPositions(f.ctx, repository.PositionFilter{WarehouseID: whMain})
	require.NoError(t, err)
	require.Len(t, list, 1)
	p := list[0]
	assert.Equal(t, "Filtro de aceite", p.ProductName)
	assert.Equal(t, "Principal", p.WarehouseName)
	requireQty(t, "20", p.QuantityIn)
	requireQty(t, "5", p.QuantityOut)
	requireQty(t, "15", p.Quantity)
	requireQty(t, "150", p.AvgPurchasePrice)
	requireQty(t, "150", p.AvgSellingPrice)
	requireQty(t, "2250", p.StockValue)

	all, err := f.query.ListStockPositions(f.ctx, repository.PositionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, f.cache.loads)
}

func TestQuery_PositionsIgnoreReversedSalesInSellingPrice(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")
	q, err := f.sales.Create(f.ctx, userID, parts(dto.PartLineRequest{ProductID: prodA, WarehouseID: whMain, Quantity: dec("2"), Rate: dec("100")}))
	require.NoError(t, err)
	_, err = f.sales.Update(f.ctx, userID, q.ID, parts(dto.PartLineRequest{ProductID: prodA, WarehouseID: whMain, Quantity: dec("2"), Rate: dec("200")}))
	require.NoError(t, err)

	list, err := f.query.ListStockPositions(f.ctx, repository.PositionFilter{ProductID: prodA})
	require.NoError(t, err)
	require.Len(t, list, 1)
	requireQty(t, "8", list[0].Quantity)
	requireQty(t, "200", list[0].AvgSellingPrice)
}

// gatedReads detiene cada Read hasta que se cierra release.
type gatedReads struct {
	inventory.TxRunner
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedReads) Read(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.TxRunner.Read(ctx, fn)
}

func TestQuery_SharedPositionsLoadSurvivesFirstCallerCancel(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")

	gated := &gatedReads{TxRunner: f.store, entered: make(chan struct{}), release: make(chan struct{})}
	query := inventory.NewStockQueryUseCase(inventory.NewEngine(inventory.EngineDeps{Tx: gated}))
	filter := repository.PositionFilter{WarehouseID: whMain}

	firstCtx, cancel := context.WithCancel(f.ctx)
	firstErr := make(chan error, 1)
	go func() {
		_, err := query.ListStockPositions(firstCtx, filter)
		firstErr <- err
	}()
	<-gated.entered

	type result struct {
		list []entity.StockPosition
		err  error
	}
	second := make(chan result, 1)
	go func() {
		list, err := query.ListStockPositions(f.ctx, filter)
		second <- result{list, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(gated.release)
	res := <-second
	require.NoError(t, res.err)
	require.Len(t, res.list, 1)
	requireQty(t, "10", res.list[0].Quantity)
}

func TestQuery_ListMovementsNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")
	q, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "1")))
	require.NoError(t, err)

	list, err := f.query.ListMovements(f.ctx, repository.LedgerFilter{ProductID: prodA})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, q.ID, list[0].ReferenceID)
	assert.Equal(t, "FLT-001", list[0].ProductCode)
	assert.Equal(t, "Principal", list[0].WarehouseName)

	page, err := f.query.ListMovements(f.ctx, repository.LedgerFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, entity.ReferencePurchase, page[0].ReferenceType)

	_, err = f.query.ListMovements(f.ctx, repository.LedgerFilter{ReferenceType: "gift"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQuery_VerifyBalancesReportsDrift(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")
	key := entity.StockKey{ProductID: prodA, WarehouseID: whMain}
	f.store.SetQuantityForTest(tenantID, key, dec("12"))

	drifts, err := f.query.VerifyBalances(f.ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, key, drifts[0].Key)
	requireQty(t, "12", drifts[0].BalanceQty)
	requireQty(t, "10", drifts[0].LedgerQty)
}

func TestQuery_ReconcileProductCache(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")
	f.buy(prodA, whAux, "", "5", "100")
	err := f.store.Run(f.ctx, "corrupt", func(ctx context.Context, r inventory.Repos) error {
		if err := r.Products.SetQuantity(ctx, prodA, dec("999")); err != nil {
			return err
		}
		return r.Products.SetQuantity(ctx, prodB, dec("3"))
	})
	require.NoError(t, err)

	n, err := f.query.ReconcileProductCache(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	requireQty(t, "15", f.product(prodA).Quantity)
	requireQty(t, "0", f.product(prodB).Quantity)
	f.requireConsistent()
}

func TestQuery_TenantsAreIsolated(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")

	other := tenant.WithID(context.Background(), "t-2")
	list, err := f.query.ListStockPositions(other, repository.PositionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEngine_InvalidatesCacheOnlyOnCommit(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "2", "100")
	assert.Equal(t, 1, f.cache.invalidated)

	_, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "3")))
	require.Error(t, err)
	assert.Equal(t, 1, f.cache.invalidated)
	assert.Equal(t, 1, f.events.count())

	ev := f.events.events[0]
	assert.Equal(t, tenantID, ev.TenantID)
	assert.Equal(t, "purchase.create", ev.Operation)
	require.Len(t, ev.Lines, 1)
	assert.Equal(t, "in", ev.Lines[0].Direction)
}

func TestReplenishment_SuggestsBelowReorderLevel(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "4", "100")
	f.buy(prodB, whMain, "", "1", "100")

	list, err := f.replenish.GenerateReplenishmentList(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	s := list[0]
	assert.Equal(t, prodA, s.ProductID)
	assert.Equal(t, 1, s.Priority)
	requireQty(t, "4", s.CurrentStock)
	requireQty(t, "7.5", s.IdealStock)
	requireQty(t, "3.5", s.SuggestedOrderQty)
	requireQty(t, "350", s.EstimatedOrderCost)
	requireQty(t, "33.33", s.GrossMarginPct)
}
