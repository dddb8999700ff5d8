package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics registro Prometheus del motor de inventario y del servidor HTTP.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	txTotal         *prometheus.CounterVec
	txDuration      *prometheus.HistogramVec
	movementsTotal  *prometheus.CounterVec
	movementUnits   *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reconcileDrifts *prometheus.GaugeVec
}

// New crea un registro propio (no el global) con las métricas del servicio.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		txTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autotaller_stock_tx_total",
			Help: "Transacciones del motor de inventario por operación y resultado.",
		}, []string{"op", "outcome"}),
		txDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autotaller_stock_tx_duration_seconds",
			Help:    "Duración de las transacciones del motor, reintentos incluidos.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		movementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autotaller_stock_movements_total",
			Help: "Asientos registrados en el libro de stock.",
		}, []string{"reference_type", "direction"}),
		movementUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autotaller_stock_movement_units_total",
			Help: "Unidades movidas por tipo de referencia y dirección.",
		}, []string{"reference_type", "direction"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autotaller_http_requests_total",
			Help: "Peticiones HTTP por ruta, método y código.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autotaller_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		reconcileDrifts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "autotaller_stock_balance_drifts",
			Help: "Saldos que no coinciden con el libro en la última verificación.",
		}, []string{"tenant_id"}),
	}
	registry.MustRegister(
		m.txTotal, m.txDuration, m.movementsTotal, m.movementUnits,
		m.requestsTotal, m.requestDuration, m.reconcileDrifts,
		prometheus.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Registerer expone el registro para métricas adicionales (p. ej. trabajos).
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *Metrics) ObserveTx(op, outcome string, elapsed time.Duration) {
	m.txTotal.WithLabelValues(op, outcome).Inc()
	m.txDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) AddMovement(refType entity.ReferenceType, dir entity.Direction, qty decimal.Decimal) {
	m.movementsTotal.WithLabelValues(string(refType), string(dir)).Inc()
	m.movementUnits.WithLabelValues(string(refType), string(dir)).Add(qty.InexactFloat64())
}

// ObserveRequest registra una petición HTTP.
func (m *Metrics) ObserveRequest(route, method, code string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, method, code).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SetDrifts publica el número de descuadres de la última verificación del tenant.
func (m *Metrics) SetDrifts(tenantID string, n int) {
	m.reconcileDrifts.WithLabelValues(tenantID).Set(float64(n))
}
