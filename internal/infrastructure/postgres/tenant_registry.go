package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/repository"
	"github.com/jhoicas/autotaller-api/pkg/logger"
)

// RegistryOptions parámetros del registro de pools.
type RegistryOptions struct {
	IdleTimeout time.Duration
	MaxConns    int32
	ForceIPv4   bool
	// Migrate aplica el esquema al abrir el pool de un tenant por primera vez.
	Migrate bool
}

type tenantPool struct {
	pool     *pgxpool.Pool
	lastUsed time.Time
}

// TenantRegistry un pool por tenant, abierto en el primer uso y cerrado tras IdleTimeout sin uso.
type TenantRegistry struct {
	tenants repository.TenantRepository
	opts    RegistryOptions
	log     *logger.Logger

	mu    sync.Mutex
	pools map[string]*tenantPool
	open  singleflight.Group

	stop chan struct{}
	done chan struct{}
}

// NewTenantRegistry crea el registro e inicia el recolector de pools inactivos.
func NewTenantRegistry(tenants repository.TenantRepository, opts RegistryOptions, log *logger.Logger) *TenantRegistry {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 15 * time.Minute
	}
	r := &TenantRegistry{
		tenants: tenants,
		opts:    opts,
		log:     log,
		pools:   make(map[string]*tenantPool),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.reap()
	return r
}

// Pool devuelve el pool del tenant, abriéndolo si hace falta.
func (r *TenantRegistry) Pool(ctx context.Context, tenantID string) (*pgxpool.Pool, error) {
	if tenantID == "" {
		return nil, domain.NewValidation("tenant", "no hay tenant en el contexto")
	}
	if p := r.touch(tenantID); p != nil {
		return p, nil
	}
	v, err, _ := r.open.Do(tenantID, func() (interface{}, error) {
		if p := r.touch(tenantID); p != nil {
			return p, nil
		}
		t, err := r.tenants.GetByID(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("buscar tenant: %w", err)
		}
		if t == nil {
			return nil, domain.NewNotFound("tenant", tenantID)
		}
		if !t.IsActive {
			return nil, domain.ErrForbidden
		}
		pool, err := NewPool(ctx, t.DBURL, PoolOptions{
			AppName:         "autotaller-" + tenantID,
			MaxConns:        r.opts.MaxConns,
			MaxConnIdleTime: r.opts.IdleTimeout,
			ForceIPv4:       r.opts.ForceIPv4,
		})
		if err != nil {
			return nil, fmt.Errorf("abrir pool del tenant %s: %w", tenantID, err)
		}
		if r.opts.Migrate {
			if err := MigrateTenant(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		r.mu.Lock()
		r.pools[tenantID] = &tenantPool{pool: pool, lastUsed: time.Now()}
		r.mu.Unlock()
		r.log.Info().Str("tenant_id", tenantID).Msg("pool de tenant abierto")
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

func (r *TenantRegistry) touch(tenantID string) *pgxpool.Pool {
	r.mu.Lock()
	defer r.mu.Unlock()
	tp, ok := r.pools[tenantID]
	if !ok {
		return nil
	}
	tp.lastUsed = time.Now()
	return tp.pool
}

func (r *TenantRegistry) reap() {
	defer close(r.done)
	ticker := time.NewTicker(r.opts.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.closeIdle(now)
		}
	}
}

func (r *TenantRegistry) closeIdle(now time.Time) {
	r.mu.Lock()
	var idle []*pgxpool.Pool
	for id, tp := range r.pools {
		if now.Sub(tp.lastUsed) >= r.opts.IdleTimeout {
			idle = append(idle, tp.pool)
			delete(r.pools, id)
			r.log.Info().Str("tenant_id", id).Msg("pool de tenant inactivo cerrado")
		}
	}
	r.mu.Unlock()
	for _, p := range idle {
		p.Close()
	}
}

// Close detiene el recolector y cierra todos los pools.
func (r *TenantRegistry) Close() {
	close(r.stop)
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, tp := range r.pools {
		tp.pool.Close()
		delete(r.pools, id)
	}
}
