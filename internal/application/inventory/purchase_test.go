package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

func TestPurchase_CreateReceivesStock(t *testing.T) {
	f := newFixture(t)
	p := f.buy(prodA, whMain, "", "10", "100")

	assert.Equal(t, entity.PurchaseStatusComplete, p.Status)
	assert.NotNil(t, p.ReceivedAt)
	requireQty(t, "1000", p.GrandTotal)
	requireQty(t, "10", f.balance(prodA, whMain, ""))

	prod := f.product(prodA)
	requireQty(t, "10", prod.Quantity)
	requireQty(t, "100", prod.Cost)
	require.NotNil(t, prod.LastPurchaseDate)
	assert.True(t, prod.LastPurchaseDate.Equal(fixedNow))

	entries, err := f.query.DocumentEntries(f.ctx, entity.ReferencePurchase, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.DirectionIn, entries[0].Direction)
	assert.Equal(t, userID, entries[0].CreatedBy)
	assert.Equal(t, 1, f.events.count())
	f.requireConsistent()
}

func TestPurchase_WeightedAverageCost(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "10", "100")
	f.buy(prodA, whAux, "", "10", "200")

	requireQty(t, "150", f.product(prodA).Cost)
	requireQty(t, "20", f.product(prodA).Quantity)
}

func TestPurchase_DraftThenReceive(t *testing.T) {
	f := newFixture(t)
	p, err := f.purchases.Create(f.ctx, userID, dto.CreatePurchaseRequest{
		SupplierID:  "sup-1",
		WarehouseID: whMain,
		Status:      "Draft",
		Lines:       []dto.PurchaseLineRequest{{ProductID: prodA, Quantity: dec("4"), UnitCost: dec("50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusDraft, p.Status)
	assert.Zero(t, f.ledgerLen())
	assert.Zero(t, f.events.count())

	got, err := f.purchases.Receive(f.ctx, userID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusComplete, got.Status)
	requireQty(t, "4", f.balance(prodA, whMain, ""))

	_, err = f.purchases.Receive(f.ctx, userID, p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	requireQty(t, "4", f.balance(prodA, whMain, ""))
	f.requireConsistent()
}

func TestPurchase_UnknownProductRollsBack(t *testing.T) {
	f := newFixture(t)
	_, err := f.purchases.Create(f.ctx, userID, dto.CreatePurchaseRequest{
		SupplierID:  "sup-1",
		WarehouseID: whMain,
		Lines: []dto.PurchaseLineRequest{
			{ProductID: prodA, Quantity: dec("3"), UnitCost: dec("10")},
			{ProductID: "missing", Quantity: dec("1"), UnitCost: dec("10")},
		},
	})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
	assert.Zero(t, f.ledgerLen())
	requireQty(t, "0", f.product(prodA).Quantity)
}

func TestPurchase_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.purchases.Create(f.ctx, userID, dto.CreatePurchaseRequest{
		SupplierID:  "sup-1",
		WarehouseID: whMain,
		Lines:       []dto.PurchaseLineRequest{{ProductID: prodA, Quantity: dec("0")}},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines[0].quantity", ve.Field)
}

func TestPurchase_GetNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.purchases.Get(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
