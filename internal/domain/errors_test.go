package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{NewNotFound("producto", "p1"), ErrNotFound},
		{&InsufficientStockError{ProductID: "p1", Available: decimal.NewFromInt(2), Requested: decimal.NewFromInt(3)}, ErrInsufficientStock},
		{&ConflictError{Entity: "saldo", Key: "k"}, ErrConflict},
		{NewValidation("quantity", "debe ser mayor que cero"), ErrInvalidInput},
		{&RetryableError{Op: "sale.create", Err: errors.New("deadlock")}, ErrRetryable},
	}
	for _, c := range cases {
		wrapped := fmt.Errorf("capa: %w", c.err)
		assert.ErrorIs(t, wrapped, c.sentinel, c.err.Error())
	}
}

func TestInsufficientStockError_Message(t *testing.T) {
	err := &InsufficientStockError{
		ProductID: "p1", ProductName: "Filtro de aceite", WarehouseID: "w1",
		Available: decimal.NewFromInt(2), Requested: decimal.NewFromInt(5),
	}
	assert.Contains(t, err.Error(), "Filtro de aceite")
	assert.Contains(t, err.Error(), "disponible 2")
	assert.Contains(t, err.Error(), "solicitado 5")
}

func TestIsConcurrentConflict(t *testing.T) {
	assert.True(t, IsConcurrentConflict(fmt.Errorf("x: %w", NewConcurrentConflict("saldo", "k"))))
	assert.False(t, IsConcurrentConflict(&ConflictError{Entity: "compra", Key: "c1"}))
	assert.False(t, IsConcurrentConflict(errors.New("otro")))
}

func TestRetryableError_Unwrap(t *testing.T) {
	cause := errors.New("40001")
	err := &RetryableError{Op: "op", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "op: 40001", err.Error())
}
