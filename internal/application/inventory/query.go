package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

// StockQueryUseCase consultas de stock reconstruidas desde el libro.
// Los errores de lectura se devuelven tal cual; nunca se sustituyen por datos vacíos.
type StockQueryUseCase struct {
	eng   *Engine
	group singleflight.Group
}

// NewStockQueryUseCase construye el caso de uso de consultas.
func NewStockQueryUseCase(eng *Engine) *StockQueryUseCase {
	return &StockQueryUseCase{eng: eng}
}

// CurrentStock cantidad neta del libro para producto y bodega (todos los lotes).
func (uc *StockQueryUseCase) CurrentStock(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	if productID == "" {
		return decimal.Zero, domain.NewValidation("product_id", "es requerido")
	}
	if warehouseID == "" {
		return decimal.Zero, domain.NewValidation("warehouse_id", "es requerido")
	}
	var qty decimal.Decimal
	err := uc.eng.tx.Read(ctx, func(ctx context.Context, r Repos) error {
		var err error
		qty, err = r.Ledger.SumByKey(ctx, productID, warehouseID, nil)
		return err
	})
	return qty, err
}

// ListStockPositions posiciones por producto y bodega. Pasa por la caché de posiciones;
// cargas concurrentes del mismo filtro comparten una sola consulta.
func (uc *StockQueryUseCase) ListStockPositions(ctx context.Context, f repository.PositionFilter) ([]entity.StockPosition, error) {
	tenantID := tenant.FromContext(ctx)
	return uc.eng.cache.FetchPositions(ctx, tenantID, f, func(ctx context.Context) ([]entity.StockPosition, error) {
		key := fmt.Sprintf("%s|%s|%s", tenantID, f.ProductID, f.WarehouseID)
		ch := uc.group.DoChan(key, func() (interface{}, error) {
			var out []entity.StockPosition
			// la carga es compartida: no depende de la cancelación del primer llamador
			err := uc.eng.tx.Read(context.WithoutCancel(ctx), func(ctx context.Context, r Repos) error {
				var err error
				out, err = r.Ledger.Positions(ctx, f)
				return err
			})
			return out, err
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
			return res.Val.([]entity.StockPosition), nil
		}
	})
}

// ListMovements kardex paginado, más reciente primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, f repository.LedgerFilter) ([]entity.Movement, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.ReferenceType != "" && !f.ReferenceType.Valid() {
		return nil, domain.NewValidation("reference_type", "desconocido: "+string(f.ReferenceType))
	}
	var out []entity.Movement
	err := uc.eng.tx.Read(ctx, func(ctx context.Context, r Repos) error {
		var err error
		out, err = r.Ledger.ListMovements(ctx, f)
		return err
	})
	return out, err
}

// DocumentEntries asientos de un documento (incluye reversos).
func (uc *StockQueryUseCase) DocumentEntries(ctx context.Context, refType entity.ReferenceType, refID string) ([]*entity.LedgerEntry, error) {
	if !refType.Valid() {
		return nil, domain.NewValidation("reference_type", "desconocido: "+string(refType))
	}
	var out []*entity.LedgerEntry
	err := uc.eng.tx.Read(ctx, func(ctx context.Context, r Repos) error {
		var err error
		out, err = r.Ledger.FindByReference(ctx, refType, refID)
		return err
	})
	return out, err
}

// VerifyBalances compara cada saldo materializado con la suma del libro de su clave.
// Devuelve sólo las claves que difieren.
func (uc *StockQueryUseCase) VerifyBalances(ctx context.Context) ([]entity.BalanceDrift, error) {
	var drifts []entity.BalanceDrift
	err := uc.eng.tx.Read(ctx, func(ctx context.Context, r Repos) error {
		balances, err := r.Balances.List(ctx)
		if err != nil {
			return err
		}
		sums, err := r.Ledger.SumAll(ctx)
		if err != nil {
			return err
		}
		drifts = compareBalances(balances, sums)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(drifts) > 0 {
		uc.eng.log.Warn().Str("tenant_id", tenant.FromContext(ctx)).Int("drifts", len(drifts)).Msg("saldos no coinciden con el libro")
	}
	return drifts, nil
}

func compareBalances(balances []*entity.StockBalance, sums map[entity.StockKey]decimal.Decimal) []entity.BalanceDrift {
	var drifts []entity.BalanceDrift
	seen := make(map[entity.StockKey]bool, len(balances))
	for _, b := range balances {
		k := b.Key()
		seen[k] = true
		if ledger := sums[k]; !ledger.Equal(b.Quantity) {
			drifts = append(drifts, entity.BalanceDrift{Key: k, BalanceQty: b.Quantity, LedgerQty: ledger})
		}
	}
	for k, ledger := range sums {
		if !seen[k] && !ledger.IsZero() {
			drifts = append(drifts, entity.BalanceDrift{Key: k, BalanceQty: decimal.Zero, LedgerQty: ledger})
		}
	}
	return drifts
}

// ReconcileProductCache reescribe products.quantity con la suma del libro por producto.
// Productos sin movimientos quedan en cero. Devuelve la cantidad de productos escritos.
func (uc *StockQueryUseCase) ReconcileProductCache(ctx context.Context) (int, error) {
	var n int
	err := uc.eng.tx.Run(ctx, "stock.reconcile", func(ctx context.Context, r Repos) error {
		sums, err := r.Ledger.SumAll(ctx)
		if err != nil {
			return err
		}
		ids, err := r.Products.ListIDs(ctx)
		if err != nil {
			return err
		}
		byProduct := make(map[string]decimal.Decimal, len(ids))
		for _, id := range ids {
			byProduct[id] = decimal.Zero
		}
		for k, q := range sums {
			if _, ok := byProduct[k.ProductID]; ok {
				byProduct[k.ProductID] = byProduct[k.ProductID].Add(q)
			}
		}
		n = len(byProduct)
		return syncProductQuantities(ctx, r.Products, byProduct)
	})
	if err != nil {
		return 0, err
	}
	uc.eng.log.Info().Str("tenant_id", tenant.FromContext(ctx)).Int("products", n).Msg("caché de productos conciliada")
	return n, nil
}
