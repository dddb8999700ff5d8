package validation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/application/validation"
	"github.com/jhoicas/autotaller-api/internal/domain"
)

type line struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
}

type doc struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
	Lines       []line `json:"lines" validate:"required,min=1,dive"`
}

func TestStruct_Valido(t *testing.T) {
	err := validation.Struct(doc{WarehouseID: "w1", Lines: []line{{ProductID: "p1", Quantity: decimal.NewFromInt(2)}}})
	assert.NoError(t, err)
}

func TestStruct_CantidadCero(t *testing.T) {
	err := validation.Struct(doc{WarehouseID: "w1", Lines: []line{{ProductID: "p1", Quantity: decimal.Zero}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines[0].quantity", ve.Field)
}

func TestStruct_SinLineas(t *testing.T) {
	err := validation.Struct(doc{WarehouseID: "w1"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines", ve.Field)
}
