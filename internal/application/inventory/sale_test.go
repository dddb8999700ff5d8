package inventory_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

func TestSale_CreateIssuesStock(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")

	in := parts(part(prodA, whMain, "3"))
	in.Services = []dto.ServiceLineRequest{{Description: "Cambio de aceite", Quantity: dec("1"), Rate: dec("80")}}
	in.VAT = dec("10")
	q, err := f.sales.Create(f.ctx, userID, in)
	require.NoError(t, err)

	assert.Equal(t, "QT-20240315-0001", q.QuotationNo)
	assert.Equal(t, entity.QuotationStatusRunning, q.Status)
	requireQty(t, "450", q.PartsTotal)
	requireQty(t, "80", q.ServiceTotal)
	requireQty(t, "583", q.NetTotal)
	requireQty(t, "7", f.balance(prodA, whMain, ""))

	prod := f.product(prodA)
	requireQty(t, "7", prod.Quantity)
	require.NotNil(t, prod.LastSoldDate)

	entries, err := f.query.DocumentEntries(f.ctx, entity.ReferenceSale, q.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.DirectionOut, entries[0].Direction)
	requireQty(t, "150", entries[0].UnitPrice)

	q2, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "1")))
	require.NoError(t, err)
	assert.Equal(t, "QT-20240315-0002", q2.QuotationNo)
	f.requireConsistent()
}

func TestSale_ServicesOnlyDoNotTouchStock(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Create(f.ctx, userID, dto.SaveQuotationRequest{
		Services: []dto.ServiceLineRequest{{Description: "Diagnóstico", Quantity: dec("1"), Rate: dec("50")}},
	})
	require.NoError(t, err)
	assert.Zero(t, f.ledgerLen())
	assert.Zero(t, f.events.count())
}

func TestSale_EmptyQuotationRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Create(f.ctx, userID, dto.SaveQuotationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSale_InsufficientStockAbortsEverything(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "5", "100")
	f.buy(prodB, whMain, "", "5", "100")
	before := f.ledgerLen()
	published := f.events.count()

	_, err := f.sales.Create(f.ctx, userID, parts(part(prodB, whMain, "2"), part(prodA, whMain, "6")))
	var ins *domain.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, prodA, ins.ProductID)
	assert.Equal(t, "Filtro de aceite", ins.ProductName)
	requireQty(t, "5", ins.Available)
	requireQty(t, "6", ins.Requested)

	requireQty(t, "5", f.balance(prodB, whMain, ""))
	assert.Equal(t, before, f.ledgerLen())
	assert.Equal(t, published, f.events.count())
	f.requireConsistent()
}

func TestSale_LinesAggregatedPerKey(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "5", "100")

	_, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "3"), part(prodA, whMain, "3")))
	var ins *domain.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	requireQty(t, "6", ins.Requested)

	q, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "2"), part(prodA, whMain, "3")))
	require.NoError(t, err)
	entries, err := f.query.DocumentEntries(f.ctx, entity.ReferenceSale, q.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	requireQty(t, "5", entries[0].Quantity)
	requireQty(t, "0", f.balance(prodA, whMain, ""))
}

func TestSale_NoBalanceRowIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whAux, "1")))
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "saldo", nf.Entity)
}

func TestSale_UpdateReversesAndReapplies(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")
	q, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "3")))
	require.NoError(t, err)

	_, err = f.sales.Update(f.ctx, userID, q.ID, parts(part(prodA, whMain, "5")))
	require.NoError(t, err)
	requireQty(t, "5", f.balance(prodA, whMain, ""))

	entries, err := f.query.DocumentEntries(f.ctx, entity.ReferenceSale, q.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, entity.DirectionOut, entries[0].Direction)
	assert.Equal(t, entity.DirectionIn, entries[1].Direction)
	assert.Equal(t, entries[0].ID, entries[1].ReversesID)
	requireQty(t, "5", entries[2].Quantity)

	// sólo la salida vigente se compensa en la segunda actualización
	_, err = f.sales.Update(f.ctx, userID, q.ID, parts(part(prodA, whMain, "2")))
	require.NoError(t, err)
	requireQty(t, "8", f.balance(prodA, whMain, ""))
	entries, err = f.query.DocumentEntries(f.ctx, entity.ReferenceSale, q.ID)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, entries[2].ID, entries[3].ReversesID)
	f.requireConsistent()
}

func TestSale_UpdateCanMoveToAnotherWarehouse(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "4", "100")
	f.buy(prodA, whAux, "", "4", "100")
	q, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "4")))
	require.NoError(t, err)

	_, err = f.sales.Update(f.ctx, userID, q.ID, parts(part(prodA, whAux, "1")))
	require.NoError(t, err)
	requireQty(t, "4", f.balance(prodA, whMain, ""))
	requireQty(t, "3", f.balance(prodA, whAux, ""))
	requireQty(t, "7", f.product(prodA).Quantity)
}

func TestSale_FailedUpdateRollsBackReversal(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")
	q, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "3")))
	require.NoError(t, err)
	before := f.ledgerLen()

	_, err = f.sales.Update(f.ctx, userID, q.ID, parts(part(prodA, whMain, "50")))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	requireQty(t, "7", f.balance(prodA, whMain, ""))
	assert.Equal(t, before, f.ledgerLen())
	got, err := f.sales.Get(f.ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Parts, 1)
	requireQty(t, "3", got.Parts[0].Quantity)
	f.requireConsistent()
}

func TestSale_UpdateUnknownQuotation(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Update(f.ctx, userID, "nope", parts(part(prodA, whMain, "1")))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSale_ConcurrentSalesNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "5", "100")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "1")))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrInsufficientStock) {
				fail++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, fail)
	requireQty(t, "0", f.balance(prodA, whMain, ""))
	f.requireConsistent()
}
