package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAggregateParts_SumaMismaClave(t *testing.T) {
	parts := []entity.PartLine{
		{ProductID: "p1", WarehouseID: "w1", Quantity: d("2"), Rate: d("10")},
		{ProductID: "p2", WarehouseID: "w1", Quantity: d("1"), Rate: d("5")},
		{ProductID: "p1", WarehouseID: "w1", Quantity: d("3"), Rate: d("11")},
		{ProductID: "p1", WarehouseID: "w1", BatchNumber: "L1", Quantity: d("1")},
	}
	got := inventory.AggregateParts(parts)
	require.Len(t, got, 3)
	assert.Equal(t, "p1", got[0].Key.ProductID)
	assert.True(t, got[0].Quantity.Equal(d("5")))
	assert.True(t, got[0].Price.Equal(d("10")), "conserva el precio de la primera línea")
	assert.Equal(t, "L1", got[2].Key.BatchNumber)
}

func TestDelta(t *testing.T) {
	k1 := entity.StockKey{ProductID: "p1", WarehouseID: "w1"}
	k2 := entity.StockKey{ProductID: "p2", WarehouseID: "w1"}
	k3 := entity.StockKey{ProductID: "p3", WarehouseID: "w1"}
	prev := []inventory.KeyedQty{{Key: k1, Quantity: d("5")}, {Key: k2, Quantity: d("2")}}
	next := []inventory.KeyedQty{{Key: k1, Quantity: d("3")}, {Key: k3, Quantity: d("4")}}

	got := inventory.Delta(prev, next)
	require.Len(t, got, 3)
	assert.True(t, got[0].Quantity.Equal(d("-2")))
	assert.Equal(t, k3, got[1].Key)
	assert.True(t, got[1].Quantity.Equal(d("4")))
	assert.Equal(t, k2, got[2].Key)
	assert.True(t, got[2].Quantity.Equal(d("-2")))

	assert.Empty(t, inventory.Delta(prev, prev), "sin cambios no hay delta")
}

func TestWeightedAverageCost(t *testing.T) {
	// 10 u a 100 + 10 u a 200 = 150
	assert.True(t, inventory.WeightedAverageCost(d("10"), d("100"), d("10"), d("200")).Equal(d("150")))
	// sin stock previo toma el costo de entrada
	assert.True(t, inventory.WeightedAverageCost(decimal.Zero, decimal.Zero, d("4"), d("25")).Equal(d("25")))
	// stock negativo no pondera
	assert.True(t, inventory.WeightedAverageCost(d("-3"), d("80"), d("2"), d("30")).Equal(d("30")))
}

func TestValidateEntry(t *testing.T) {
	ok := &entity.LedgerEntry{
		ProductID: "p", WarehouseID: "w", Quantity: d("1"),
		Direction: entity.DirectionIn, ReferenceType: entity.ReferencePurchase, ReferenceID: "r",
	}
	require.NoError(t, inventory.ValidateEntry(ok))

	cases := map[string]func(e *entity.LedgerEntry){
		"sin producto":   func(e *entity.LedgerEntry) { e.ProductID = "" },
		"sin bodega":     func(e *entity.LedgerEntry) { e.WarehouseID = "" },
		"cantidad cero":  func(e *entity.LedgerEntry) { e.Quantity = decimal.Zero },
		"negativa":       func(e *entity.LedgerEntry) { e.Quantity = d("-1") },
		"direccion":      func(e *entity.LedgerEntry) { e.Direction = "sideways" },
		"tipo":           func(e *entity.LedgerEntry) { e.ReferenceType = "gift" },
		"sin referencia": func(e *entity.LedgerEntry) { e.ReferenceID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := *ok
			mutate(&e)
			err := inventory.ValidateEntry(&e)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
