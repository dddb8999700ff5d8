package postgres

import (
	"context"
	"fmt"
	"net"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/autotaller-api/pkg/config"
)

// PoolOptions límites y etiquetas de un pool.
type PoolOptions struct {
	// AppName se envía como application_name (visible en pg_stat_activity).
	AppName         string
	MinConns        int32
	MaxConns        int32
	MaxConnIdleTime time.Duration
	// ForceIPv4 marca el dial sólo por IPv4 (contenedores sin IPv6).
	ForceIPv4 bool
}

// NewControlPool abre el pool de la base de control (catálogo de tenants).
func NewControlPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	return NewPool(ctx, cfg.ConnectionString(), PoolOptions{
		AppName:   "autotaller-control",
		MinConns:  1,
		MaxConns:  cfg.MaxConns,
		ForceIPv4: cfg.ForceIPv4,
	})
}

// NewPool crea un pool PostgreSQL para dsn con el codec NUMERIC -> decimal registrado y hace ping.
func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	configurePool(poolConfig, opts)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// configurePool aplica límites, etiquetas y el registro de tipos a todas las conexiones del pool.
func configurePool(c *pgxpool.Config, opts PoolOptions) {
	c.MaxConns = 10
	if opts.MaxConns > 0 {
		c.MaxConns = opts.MaxConns
	}
	c.MinConns = 0
	if opts.MinConns > 0 && opts.MinConns <= c.MaxConns {
		c.MinConns = opts.MinConns
	}
	c.MaxConnLifetime = time.Hour
	c.MaxConnIdleTime = 30 * time.Minute
	if opts.MaxConnIdleTime > 0 {
		c.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	c.HealthCheckPeriod = time.Minute
	if opts.AppName != "" {
		c.ConnConfig.RuntimeParams["application_name"] = opts.AppName
	}
	if opts.ForceIPv4 {
		c.ConnConfig.DialFunc = dialIPv4
	}

	c.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
}

// dialIPv4 resuelve el host a su primera dirección IPv4; sin IPv4 cae al dial normal.
func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := lookupIPv4(ctx, net.DefaultResolver, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

func lookupIPv4(ctx context.Context, r *net.Resolver, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return "", fmt.Errorf("%s no es IPv4", host)
		}
		return host, nil
	}
	ips, err := r.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("%s sin dirección IPv4", host)
	}
	return ips[0].String(), nil
}
