package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de repuestos.
// Combina el stock del libro con el historial de ventas para priorizar los productos críticos.
type ReplenishmentUseCase struct {
	eng *Engine
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(eng *Engine) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{eng: eng}
}

// GenerateReplenishmentList devuelve los productos en o bajo su nivel de reorden con la
// cantidad sugerida de pedido y un ranking de prioridad por margen y volumen de ventas.
// warehouseID puede ser vacío para considerar el stock de todas las bodegas.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, warehouseID string) ([]dto.ReplenishmentSuggestion, error) {
	end := uc.eng.now().UTC()
	start := end.AddDate(0, 0, -90)

	var (
		products  []*entity.Product
		positions []entity.StockPosition
		sales     []*entity.LedgerEntry
	)
	err := uc.eng.tx.Read(ctx, func(ctx context.Context, r Repos) error {
		var err error
		if products, err = r.Products.List(ctx, 0, 0); err != nil {
			return err
		}
		if positions, err = r.Ledger.Positions(ctx, repository.PositionFilter{WarehouseID: warehouseID}); err != nil {
			return err
		}
		sales, err = r.Ledger.List(ctx, repository.LedgerFilter{
			WarehouseID: warehouseID, ReferenceType: entity.ReferenceSale, From: &start, To: &end,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	onHand := make(map[string]decimal.Decimal, len(positions))
	for _, p := range positions {
		onHand[p.ProductID] = onHand[p.ProductID].Add(p.Quantity)
	}
	// las entradas de venta son reversos y restan
	sold := make(map[string]decimal.Decimal)
	for _, e := range sales {
		sold[e.ProductID] = sold[e.ProductID].Sub(e.Signed())
	}

	hundred := decimal.NewFromInt(100)
	idealFactor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestion, 0)
	for _, p := range products {
		if !p.ReorderLevel.IsPositive() {
			continue
		}
		current := onHand[p.ID]
		if current.GreaterThan(p.ReorderLevel) {
			continue
		}
		ideal := p.ReorderLevel.Mul(idealFactor)
		qty := ideal.Sub(current)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		var margin decimal.Decimal
		if p.Price.IsPositive() {
			margin = p.Price.Sub(p.Cost).Div(p.Price).Mul(hundred).Round(2)
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestion{
			ProductID:           p.ID,
			ProductCode:         p.Code,
			ProductName:         p.Name,
			CurrentStock:        current,
			ReorderLevel:        p.ReorderLevel,
			IdealStock:          ideal,
			SuggestedOrderQty:   qty,
			UnitCost:            p.Cost,
			EstimatedOrderCost:  qty.Mul(p.Cost).Round(2),
			GrossMarginPct:      margin,
			UnitsSoldLast90Days: sold[p.ID],
		})
	}

	// Primero mayor margen, luego mayor volumen de ventas, finalmente mayor déficit.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		if !a.UnitsSoldLast90Days.Equal(b.UnitsSoldLast90Days) {
			return a.UnitsSoldLast90Days.GreaterThan(b.UnitsSoldLast90Days)
		}
		return a.ReorderLevel.Sub(a.CurrentStock).GreaterThan(b.ReorderLevel.Sub(b.CurrentStock))
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
