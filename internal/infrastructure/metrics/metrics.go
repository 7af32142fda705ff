package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

var (
	_ inventory.Metrics = (*Metrics)(nil)
	_ sales.Metrics     = (*Metrics)(nil)
)

// Metrics agrupa los contadores Prometheus del kardex, las ventas y la API HTTP.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	movements       *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	payments        *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registra los contadores en un registry propio.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_movements_total",
			Help: "Movimientos registrados en el kardex por tipo.",
		}, []string{"type"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_movements_rejected_total",
			Help: "Movimientos rechazados por tipo y motivo.",
		}, []string{"type", "reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ventas_transitions_total",
			Help: "Cambios de estado de ventas.",
		}, []string{"from", "to"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ventas_payments_total",
			Help: "Pagos registrados por moneda y si quedaron por conciliar.",
		}, []string{"currency", "needs_reconciliation"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_http_requests_total",
			Help: "Peticiones HTTP por ruta y código.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventario_http_request_duration_seconds",
			Help:    "Duración de peticiones HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	registry.MustRegister(m.movements, m.rejections, m.transitions, m.payments, m.requestsTotal, m.requestDuration)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler expone el endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Registerer expone el registry para métricas adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *Metrics) MovementRecorded(t entity.MovementType) {
	m.movements.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) MovementRejected(t entity.MovementType, reason string) {
	m.rejections.WithLabelValues(string(t), reason).Inc()
}

func (m *Metrics) SaleTransition(from, to entity.SaleStatus) {
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) PaymentRecorded(currency string, flagged bool) {
	m.payments.WithLabelValues(currency, strconv.FormatBool(flagged)).Inc()
}

// ObserveRequest registra una petición HTTP terminada.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
