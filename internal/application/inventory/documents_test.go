package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

func TestAdjustment_AdditionAndSubtraction(t *testing.T) {
	f := newFixture(t)
	a, err := f.adjust.Create(f.ctx, userID, dto.CreateAdjustmentRequest{
		WarehouseID: whAux,
		Note:        "conteo físico",
		Lines: []dto.AdjustmentLineRequest{
			{ProductID: prodA, Type: "Addition", BatchNumber: "B1", Quantity: dec("5")},
			{ProductID: prodA, Type: "Subtraction", BatchNumber: "B1", Quantity: dec("2")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "FLT-001", a.Lines[0].ProductCode)
	requireQty(t, "3", f.balance(prodA, whAux, "B1"))
	requireQty(t, "3", f.product(prodA).Quantity)
	f.requireConsistent()
}

func TestAdjustment_SubtractionWithoutRow(t *testing.T) {
	f := newFixture(t)
	_, err := f.adjust.Create(f.ctx, userID, dto.CreateAdjustmentRequest{
		WarehouseID: whMain,
		Lines:       []dto.AdjustmentLineRequest{{ProductID: prodB, Type: "Subtraction", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustment_IsAtomic(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "2", "100")
	before := f.ledgerLen()

	_, err := f.adjust.Create(f.ctx, userID, dto.CreateAdjustmentRequest{
		WarehouseID: whMain,
		Lines: []dto.AdjustmentLineRequest{
			{ProductID: prodB, Type: "Addition", Quantity: dec("3")},
			{ProductID: prodA, Type: "Subtraction", Quantity: dec("10")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, before, f.ledgerLen())
	requireQty(t, "0", f.product(prodB).Quantity)
	requireQty(t, "2", f.balance(prodA, whMain, ""))
}

func TestAdjustment_InvalidType(t *testing.T) {
	f := newFixture(t)
	_, err := f.adjust.Create(f.ctx, userID, dto.CreateAdjustmentRequest{
		WarehouseID: whMain,
		Lines:       []dto.AdjustmentLineRequest{{ProductID: prodA, Type: "Robo", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func returnReq(purchaseID, qty string) dto.SavePurchaseReturnRequest {
	return dto.SavePurchaseReturnRequest{
		PurchaseID: purchaseID,
		Reason:     "defectuoso",
		Lines:      []dto.ReturnLineRequest{{ProductID: prodA, Quantity: dec(qty), UnitPrice: dec("100")}},
	}
}

func TestPurchaseReturn_CreateAndUpdateDelta(t *testing.T) {
	f := newFixture(t)
	p := f.buy(prodA, whMain, "", "10", "100")

	r, err := f.returns.Create(f.ctx, userID, returnReq(p.ID, "4"))
	require.NoError(t, err)
	assert.Equal(t, whMain, r.WarehouseID)
	assert.Equal(t, "sup-1", r.SupplierID)
	requireQty(t, "400", r.TotalReturnAmount)
	requireQty(t, "6", f.balance(prodA, whMain, ""))

	_, err = f.returns.Update(f.ctx, userID, r.ID, returnReq(p.ID, "2"))
	require.NoError(t, err)
	requireQty(t, "8", f.balance(prodA, whMain, ""))

	_, err = f.returns.Update(f.ctx, userID, r.ID, returnReq(p.ID, "7"))
	require.NoError(t, err)
	requireQty(t, "3", f.balance(prodA, whMain, ""))

	entries, err := f.query.DocumentEntries(f.ctx, entity.ReferenceReturn, r.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, entity.DirectionOut, entries[0].Direction)
	assert.Equal(t, entity.DirectionIn, entries[1].Direction)
	assert.Equal(t, entity.DirectionOut, entries[2].Direction)
	f.requireConsistent()
}

func TestPurchaseReturn_CannotExceedPurchased(t *testing.T) {
	f := newFixture(t)
	p := f.buy(prodA, whMain, "", "10", "100")
	f.buy(prodA, whMain, "", "10", "100")
	_, err := f.returns.Create(f.ctx, userID, returnReq(p.ID, "6"))
	require.NoError(t, err)

	_, err = f.returns.Create(f.ctx, userID, returnReq(p.ID, "5"))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines", ve.Field)
	requireQty(t, "14", f.balance(prodA, whMain, ""))
	f.requireConsistent()
}

func TestPurchaseReturn_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	p := f.buy(prodA, whMain, "", "10", "100")
	_, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "9")))
	require.NoError(t, err)

	_, err = f.returns.Create(f.ctx, userID, returnReq(p.ID, "4"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	requireQty(t, "1", f.balance(prodA, whMain, ""))
}

func TestPurchaseReturn_InsufficientStockReportedBeforePurchasedCap(t *testing.T) {
	f := newFixture(t)
	p := f.buy(prodA, whMain, "", "100", "100")
	_, err := f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "30")))
	require.NoError(t, err)
	_, err = f.sales.Create(f.ctx, userID, parts(part(prodA, whMain, "80")))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = f.transfers.Create(f.ctx, userID, dto.CreateStockTransferRequest{
		FromWarehouseID: whMain,
		ToWarehouseID:   whAux,
		Lines:           []dto.TransferLineRequest{{ProductID: prodA, Quantity: dec("20")}},
	})
	require.NoError(t, err)
	_, err = f.returns.Create(f.ctx, userID, returnReq(p.ID, "15"))
	require.NoError(t, err)
	requireQty(t, "35", f.balance(prodA, whMain, ""))
	before := f.ledgerLen()

	_, err = f.returns.Create(f.ctx, userID, returnReq(p.ID, "100"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ins *domain.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	requireQty(t, "35", ins.Available)
	requireQty(t, "100", ins.Requested)
	assert.Equal(t, "Filtro de aceite", ins.ProductName)

	requireQty(t, "35", f.balance(prodA, whMain, ""))
	assert.Equal(t, before, f.ledgerLen())
	f.requireConsistent()
}

func TestPurchaseReturn_Rules(t *testing.T) {
	f := newFixture(t)
	draft, err := f.purchases.Create(f.ctx, userID, dto.CreatePurchaseRequest{
		SupplierID: "sup-1", WarehouseID: whMain, Status: "Draft",
		Lines: []dto.PurchaseLineRequest{{ProductID: prodA, Quantity: dec("3"), UnitCost: dec("1")}},
	})
	require.NoError(t, err)
	_, err = f.returns.Create(f.ctx, userID, returnReq(draft.ID, "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.returns.Create(f.ctx, userID, returnReq("nope", "1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p1 := f.buy(prodA, whMain, "", "5", "100")
	p2 := f.buy(prodA, whMain, "", "5", "100")
	r, err := f.returns.Create(f.ctx, userID, returnReq(p1.ID, "1"))
	require.NoError(t, err)
	_, err = f.returns.Update(f.ctx, userID, r.ID, returnReq(p2.ID, "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_MovesBetweenWarehouses(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "L7", "10", "100")

	tr, err := f.transfers.Create(f.ctx, userID, dto.CreateStockTransferRequest{
		FromWarehouseID: whMain,
		ToWarehouseID:   whAux,
		Lines:           []dto.TransferLineRequest{{ProductID: prodA, BatchNumber: "L7", Quantity: dec("4")}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^TR-[0-9A-F]{8}$`, tr.TransferNo)
	assert.Equal(t, entity.TransferStatusCompleted, tr.Status)
	requireQty(t, "6", f.balance(prodA, whMain, "L7"))
	requireQty(t, "4", f.balance(prodA, whAux, "L7"))
	requireQty(t, "10", f.product(prodA).Quantity)

	entries, err := f.query.DocumentEntries(f.ctx, entity.ReferenceTransfer, tr.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	requireQty(t, "100", entries[1].UnitCost)

	got, err := f.transfers.Get(f.ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.TransferNo, got.TransferNo)
	f.requireConsistent()
}

func TestTransfer_InsufficientAtSource(t *testing.T) {
	f := newFixture(t)
	f.buy(prodA, whMain, "", "3", "100")
	_, err := f.transfers.Create(f.ctx, userID, dto.CreateStockTransferRequest{
		FromWarehouseID: whMain,
		ToWarehouseID:   whAux,
		Lines:           []dto.TransferLineRequest{{ProductID: prodA, Quantity: dec("4")}},
	})
	var ins *domain.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	requireQty(t, "3", ins.Available)
	requireQty(t, "3", f.balance(prodA, whMain, ""))
}

func TestTransfer_SameWarehouseRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.transfers.Create(f.ctx, userID, dto.CreateStockTransferRequest{
		FromWarehouseID: whMain,
		ToWarehouseID:   whMain,
		Lines:           []dto.TransferLineRequest{{ProductID: prodA, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func orderReq() dto.CreatePurchaseOrderRequest {
	return dto.CreatePurchaseOrderRequest{
		SupplierID:  "sup-1",
		WarehouseID: whMain,
		Lines: []dto.PurchaseOrderLineRequest{
			{ProductID: prodA, BatchNumber: "L1", Quantity: dec("6"), UnitPrice: dec("80")},
			{ProductID: prodB, Quantity: dec("2"), UnitPrice: dec("120")},
		},
	}
}

func TestPurchaseOrder_ReceiveCreatesPurchase(t *testing.T) {
	f := newFixture(t)
	o, err := f.orders.Create(f.ctx, userID, orderReq())
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusPending, o.Status)
	assert.Zero(t, f.ledgerLen())

	_, err = f.orders.UpdateStatus(f.ctx, userID, o.ID, dto.UpdatePurchaseOrderStatusRequest{Status: "Approved"})
	require.NoError(t, err)
	got, err := f.orders.UpdateStatus(f.ctx, userID, o.ID, dto.UpdatePurchaseOrderStatusRequest{Status: "Received"})
	require.NoError(t, err)
	require.NotEmpty(t, got.PurchaseID)

	pur, err := f.purchases.Get(f.ctx, got.PurchaseID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusComplete, pur.Status)
	assert.Equal(t, o.ID, pur.PurchaseOrderID)
	requireQty(t, "6", f.balance(prodA, whMain, "L1"))
	requireQty(t, "2", f.balance(prodB, whMain, ""))
	requireQty(t, "80", f.product(prodA).Cost)

	_, err = f.orders.UpdateStatus(f.ctx, userID, o.ID, dto.UpdatePurchaseOrderStatusRequest{Status: "Received"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	requireQty(t, "6", f.balance(prodA, whMain, "L1"))
	f.requireConsistent()
}

func TestPurchaseOrder_CancelledIsTerminal(t *testing.T) {
	f := newFixture(t)
	o, err := f.orders.Create(f.ctx, userID, orderReq())
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(f.ctx, userID, o.ID, dto.UpdatePurchaseOrderStatusRequest{Status: "Cancelled"})
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(f.ctx, userID, o.ID, dto.UpdatePurchaseOrderStatusRequest{Status: "Received"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, f.ledgerLen())
}

func TestPurchaseOrder_ReceiveUsesCurrentProductData(t *testing.T) {
	f := newFixture(t)
	o, err := f.orders.Create(f.ctx, userID, orderReq())
	require.NoError(t, err)
	// el producto cambia entre la orden y la recepción
	err = f.store.Run(f.ctx, "test", func(ctx context.Context, r inventory.Repos) error {
		p, err := r.Products.GetByID(ctx, prodB)
		require.NoError(t, err)
		p.Name = "renombrado"
		return r.Products.Update(ctx, p)
	})
	require.NoError(t, err)

	got, err := f.orders.UpdateStatus(f.ctx, userID, o.ID, dto.UpdatePurchaseOrderStatusRequest{Status: "Received"})
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, got.Status)
	pur, err := f.purchases.Get(f.ctx, got.PurchaseID)
	require.NoError(t, err)
	assert.Equal(t, "renombrado", pur.Lines[1].ProductName)
}
