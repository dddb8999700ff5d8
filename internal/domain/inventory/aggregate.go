package inventory

import (
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// KeyedQty cantidad agregada para una clave de saldo. Price es el de la primera línea.
type KeyedQty struct {
	Key      entity.StockKey
	Name     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// AggregateParts suma las líneas de repuestos por (producto, bodega, lote)
// conservando el orden de primera aparición.
func AggregateParts(parts []entity.PartLine) []KeyedQty {
	idx := make(map[entity.StockKey]int, len(parts))
	out := make([]KeyedQty, 0, len(parts))
	for _, p := range parts {
		k := p.Key()
		if i, ok := idx[k]; ok {
			out[i].Quantity = out[i].Quantity.Add(p.Quantity)
			continue
		}
		idx[k] = len(out)
		out = append(out, KeyedQty{Key: k, Name: p.ProductName, Quantity: p.Quantity, Price: p.Rate})
	}
	return out
}

// Delta diferencia por clave entre cantidades nuevas y anteriores (nuevo - anterior).
// Claves sin cambio se omiten. El orden es: claves nuevas en su orden, luego las eliminadas.
func Delta(prev, next []KeyedQty) []KeyedQty {
	prevBy := make(map[entity.StockKey]KeyedQty, len(prev))
	for _, p := range prev {
		prevBy[p.Key] = p
	}
	seen := make(map[entity.StockKey]bool, len(next))
	var out []KeyedQty
	for _, n := range next {
		seen[n.Key] = true
		d := n.Quantity.Sub(prevBy[n.Key].Quantity)
		if !d.IsZero() {
			n.Quantity = d
			out = append(out, n)
		}
	}
	for _, p := range prev {
		if seen[p.Key] {
			continue
		}
		p.Quantity = p.Quantity.Neg()
		out = append(out, p)
	}
	return out
}
