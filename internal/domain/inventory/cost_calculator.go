package inventory

import "github.com/shopspring/decimal"

// costScale decimales del costo promedio persistido.
const costScale = 4

// WeightedAverageCost costo promedio ponderado tras una entrada.
// nuevo = (stock * costo + cantEntrada * costoEntrada) / (stock + cantEntrada)
// Un stock previo negativo o nulo no aporta al promedio.
func WeightedAverageCost(onHand, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if onHand.IsNegative() {
		onHand = decimal.Zero
	}
	total := onHand.Add(inQty)
	if total.LessThanOrEqual(decimal.Zero) {
		return currentCost
	}
	num := onHand.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.DivRound(total, costScale)
}
