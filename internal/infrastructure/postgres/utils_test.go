package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/autotaller-api/internal/domain"
)

func TestErrorClassification(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}
	assert.True(t, isUniqueViolation(wrap("23505")))
	assert.False(t, isUniqueViolation(wrap("23503")))
	assert.True(t, isCheckViolation(wrap("23514")))
	assert.True(t, isTransient(wrap("40001")))
	assert.True(t, isTransient(wrap("40P01")))
	assert.False(t, isTransient(wrap("23505")))
	assert.False(t, isTransient(errors.New("conexión cerrada")))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "x", derefString(nullIfEmpty("x")))
	assert.Equal(t, "", derefString(nil))
}

func TestQuotationInsertErr_NumberCollisionIsRetried(t *testing.T) {
	dup := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "quotations_quotation_no_key"})
	err := quotationInsertErr("QT-20240315-0004", dup)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, domain.IsConcurrentConflict(err))

	pk := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "quotations_pkey"})
	err = quotationInsertErr("QT-20240315-0004", pk)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.False(t, domain.IsConcurrentConflict(err))

	other := errors.New("conexión cerrada")
	assert.False(t, domain.IsConcurrentConflict(quotationInsertErr("QT-20240315-0004", other)))
}
