package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

var key = entity.StockKey{ProductID: "p1", WarehouseID: "w1"}

func entry(dir entity.Direction, qty string) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID: "e-" + qty, ProductID: "p1", WarehouseID: "w1", Quantity: decimal.RequireFromString(qty),
		Direction: dir, ReferenceType: entity.ReferenceAdjustment, ReferenceID: "adj-1",
	}
}

func TestStore_RunCommitsOnSuccessOnly(t *testing.T) {
	s := NewStore(Options{})
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Run(ctx, "op", func(ctx context.Context, r inventory.Repos) error {
		require.NoError(t, r.Ledger.Append(ctx, entry(entity.DirectionIn, "5")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.Read(ctx, func(ctx context.Context, r inventory.Repos) error {
		sum, err := r.Ledger.SumByKey(ctx, "p1", "w1", nil)
		assert.True(t, sum.IsZero())
		return err
	})
	require.NoError(t, err)

	err = s.Run(ctx, "op", func(ctx context.Context, r inventory.Repos) error {
		return r.Ledger.Append(ctx, entry(entity.DirectionIn, "5"))
	})
	require.NoError(t, err)
	err = s.Read(ctx, func(ctx context.Context, r inventory.Repos) error {
		sum, err := r.Ledger.SumByKey(ctx, "p1", "w1", nil)
		assert.Equal(t, "5", sum.String())
		return err
	})
	require.NoError(t, err)
}

func TestStore_RetriesConcurrentConflicts(t *testing.T) {
	s := NewStore(Options{MaxRetries: 2})
	calls := 0
	err := s.Run(context.Background(), "sale.create", func(context.Context, inventory.Repos) error {
		calls++
		return domain.NewConcurrentConflict("saldo", "k")
	})
	var re *domain.RetryableError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "sale.create", re.Op)
	assert.Equal(t, 3, calls)

	calls = 0
	err = s.Run(context.Background(), "op", func(context.Context, inventory.Repos) error {
		calls++
		if calls < 2 {
			return domain.NewConcurrentConflict("saldo", "k")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestStore_BusinessConflictNotRetried(t *testing.T) {
	s := NewStore(Options{MaxRetries: 5})
	calls := 0
	err := s.Run(context.Background(), "op", func(context.Context, inventory.Repos) error {
		calls++
		return &domain.ConflictError{Entity: "compra", Key: "c1"}
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrRetryable)
	assert.Equal(t, 1, calls)
}

func TestStore_TimeoutIsRetryable(t *testing.T) {
	s := NewStore(Options{Timeout: 20 * time.Millisecond})
	err := s.Run(context.Background(), "slow", func(ctx context.Context, _ inventory.Repos) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, domain.ErrRetryable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_TenantIsolation(t *testing.T) {
	s := NewStore(Options{})
	a := tenant.WithID(context.Background(), "a")
	b := tenant.WithID(context.Background(), "b")
	require.NoError(t, s.Run(a, "op", func(ctx context.Context, r inventory.Repos) error {
		return r.Warehouses.Create(ctx, &entity.Warehouse{ID: "w1", Code: "W1"})
	}))
	require.NoError(t, s.Read(b, func(ctx context.Context, r inventory.Repos) error {
		w, err := r.Warehouses.GetByID(ctx, "w1")
		assert.Nil(t, w)
		return err
	}))
}

func TestLedger_AppendValidates(t *testing.T) {
	s := NewStore(Options{})
	err := s.Run(context.Background(), "op", func(ctx context.Context, r inventory.Repos) error {
		e := entry(entity.DirectionIn, "1")
		e.Quantity = decimal.Zero
		return r.Ledger.Append(ctx, e)
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)
}

func TestBalance_GetAdjustAndVersion(t *testing.T) {
	s := NewStore(Options{})
	err := s.Run(context.Background(), "op", func(ctx context.Context, r inventory.Repos) error {
		_, err := r.Balances.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		b, err := r.Balances.GetOrCreate(ctx, key)
		require.NoError(t, err)
		assert.True(t, b.Quantity.IsZero())
		stale := *b

		require.NoError(t, r.Balances.Adjust(ctx, b, decimal.NewFromInt(4)))
		assert.Equal(t, "4", b.Quantity.String())
		assert.Equal(t, int64(1), b.Version)

		err = r.Balances.Adjust(ctx, &stale, decimal.NewFromInt(1))
		assert.True(t, domain.IsConcurrentConflict(err))

		err = r.Balances.Adjust(ctx, b, decimal.NewFromInt(-5))
		var ins *domain.InsufficientStockError
		require.ErrorAs(t, err, &ins)
		assert.Equal(t, "4", ins.Available.String())
		assert.Equal(t, "5", ins.Requested.String())

		sum, err := r.Balances.SumByProduct(ctx, "p1")
		assert.Equal(t, "4", sum.String())
		return err
	})
	require.NoError(t, err)
}

func TestProduct_UpdateKeepsQuantity(t *testing.T) {
	s := NewStore(Options{})
	err := s.Run(context.Background(), "op", func(ctx context.Context, r inventory.Repos) error {
		require.NoError(t, r.Products.Create(ctx, &entity.Product{ID: "p1", Code: "A"}))
		require.NoError(t, r.Products.SetQuantity(ctx, "p1", decimal.NewFromInt(7)))
		err := r.Products.Create(ctx, &entity.Product{ID: "p2", Code: "A"})
		assert.ErrorIs(t, err, domain.ErrConflict)

		p, err := r.Products.GetByID(ctx, "p1")
		require.NoError(t, err)
		p.Name = "Nuevo"
		p.Quantity = decimal.NewFromInt(100)
		require.NoError(t, r.Products.Update(ctx, p))

		got, err := r.Products.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Nuevo", got.Name)
		assert.Equal(t, "7", got.Quantity.String())
		return nil
	})
	require.NoError(t, err)
}

func TestWarehouse_ListOrdersByNameWithAccents(t *testing.T) {
	s := NewStore(Options{})
	ctx := context.Background()
	err := s.Run(ctx, "op", func(ctx context.Context, r inventory.Repos) error {
		for _, w := range []*entity.Warehouse{
			{ID: "w1", Code: "A1", Name: "Bodega sur"},
			{ID: "w2", Code: "B2", Name: "Área de lavado"},
			{ID: "w3", Code: "C3", Name: "almacén central"},
		} {
			if err := r.Warehouses.Create(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var names []string
	err = s.Read(ctx, func(ctx context.Context, r inventory.Repos) error {
		list, err := r.Warehouses.List(ctx, 0, 0)
		for _, w := range list {
			names = append(names, w.Name)
		}
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"almacén central", "Área de lavado", "Bodega sur"}, names)
}
