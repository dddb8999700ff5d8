package repository

import (
	"context"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BalanceRepository saldos materializados por (producto, bodega, lote).
// Se usa dentro de transacciones; las lecturas bloquean la fila.
type BalanceRepository interface {
	// GetOrCreate bloquea y devuelve la fila, creándola en cero si no existe.
	GetOrCreate(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error)
	// Get bloquea y devuelve la fila; NotFoundError si no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error)
	// Adjust aplica delta verificando la versión leída. Actualiza b en sitio.
	Adjust(ctx context.Context, b *entity.StockBalance, delta decimal.Decimal) error
	// SumByProduct suma de saldos de un producto en todas las bodegas.
	SumByProduct(ctx context.Context, productID string) (decimal.Decimal, error)
	// List todos los saldos (sin bloqueo).
	List(ctx context.Context) ([]*entity.StockBalance, error)
}
