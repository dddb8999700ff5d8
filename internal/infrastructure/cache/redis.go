package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
	"github.com/jhoicas/autotaller-api/pkg/logger"
)

var _ inventory.PositionsCache = (*PositionsCache)(nil)

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// PositionsCache caché de posiciones de stock con versión por tenant.
// Invalidar incrementa la versión: las claves viejas quedan huérfanas hasta su TTL.
type PositionsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewPositionsCache construye la caché. Con client nil delega siempre en el loader.
func NewPositionsCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *PositionsCache {
	return &PositionsCache{client: client, ttl: ttl, log: log}
}

func versionKey(tenantID string) string {
	return "stock:positions:version:" + tenantID
}

// version devuelve la versión actual del tenant, inicializándola en 1.
func (c *PositionsCache) version(ctx context.Context, tenantID string) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey(tenantID)).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey(tenantID), 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey(tenantID)).Int64()
	}
	return ver, err
}

func (c *PositionsCache) buildKey(ctx context.Context, tenantID string, f repository.PositionFilter) (string, error) {
	ver, err := c.version(ctx, tenantID)
	if err != nil {
		return "", err
	}
	parts := []string{"stock", "positions", tenantID, f.ProductID, f.WarehouseID}
	return fmt.Sprintf("%s:%d", strings.Join(parts, ":"), ver), nil
}

// FetchPositions devuelve las posiciones cacheadas o las carga. Si Redis falla se sirve del loader.
func (c *PositionsCache) FetchPositions(ctx context.Context, tenantID string, f repository.PositionFilter,
	load func(ctx context.Context) ([]entity.StockPosition, error)) ([]entity.StockPosition, error) {
	if c == nil || c.client == nil {
		return load(ctx)
	}
	key, err := c.buildKey(ctx, tenantID, f)
	if err != nil {
		c.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("caché de posiciones no disponible")
		return load(ctx)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var out []entity.StockPosition
		if err := json.Unmarshal(payload, &out); err == nil {
			return out, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
	}

	positions, err := load(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(positions)
	if err != nil {
		return positions, nil
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
	return positions, nil
}

// Invalidate descarta las posiciones cacheadas del tenant.
func (c *PositionsCache) Invalidate(ctx context.Context, tenantID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(tenantID)).Err()
}
