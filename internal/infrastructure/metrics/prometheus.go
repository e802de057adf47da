// Package metrics expone métricas Prometheus de HTTP, transacciones y adjudicaciones.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ ports.AwardObserver = (*Metrics)(nil)

// Metrics agrupa los colectores sobre un registro propio (no el global), así cada instancia
// puede crearse en tests sin registros duplicados.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	apiErrors       *prometheus.CounterVec

	txDuration *prometheus.HistogramVec

	awards        *prometheus.CounterVec
	bidsSubmitted *prometheus.CounterVec
	reconciled    *prometheus.CounterVec
}

// New registra todos los colectores con el prefijo namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total de peticiones a la API",
		}, []string{"method", "path"}),
		apiErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total de respuestas con estado >= 400",
		}, []string{"method", "path", "status"}),
		txDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_transaction_duration_seconds",
			Help:      "Duración de las transacciones en segundos",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		awards: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "award_attempts_total",
			Help:      "Intentos de aceptar una oferta por resultado",
		}, []string{"outcome"}),
		bidsSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bids_submitted_total",
			Help:      "Ofertas registradas (created=false si actualizó la vigente)",
		}, []string{"created"}),
		reconciled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rfq_reconciled_total",
			Help:      "RFQ revisadas por la reconciliación",
		}, []string{"repaired"}),
	}
}

// Registry expone el registro (tests y handler).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware mide cada petición. Usa la ruta registrada (/api/rfqs/:id) para acotar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		method := c.Method()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		code := strconv.Itoa(status)

		m.requests.WithLabelValues(method, path).Inc()
		m.requestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		if status >= 400 {
			m.apiErrors.WithLabelValues(method, path, code).Inc()
		}
		return err
	}
}

// Handler endpoint /metrics para fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// ObserveAward cuenta un intento de adjudicación (accepted, conflict, invalid, failed).
func (m *Metrics) ObserveAward(outcome string) {
	m.awards.WithLabelValues(outcome).Inc()
}

// ObserveBidSubmitted cuenta una oferta creada o actualizada.
func (m *Metrics) ObserveBidSubmitted(created bool) {
	m.bidsSubmitted.WithLabelValues(strconv.FormatBool(created)).Inc()
}

// ObserveReconcile cuenta una RFQ revisada.
func (m *Metrics) ObserveReconcile(repaired bool) {
	m.reconciled.WithLabelValues(strconv.FormatBool(repaired)).Inc()
}

// InstrumentTx envuelve un TxRunner midiendo la duración de cada transacción.
func (m *Metrics) InstrumentTx(next ports.TxRunner) ports.TxRunner {
	return &timedTx{next: next, hist: m.txDuration}
}

type timedTx struct {
	next ports.TxRunner
	hist *prometheus.HistogramVec
}

func (t *timedTx) Run(ctx context.Context, fn func(repository.RfqRepository, repository.BidRepository, repository.NotificationRepository) error) error {
	start := time.Now()
	err := t.next.Run(ctx, fn)
	result := "commit"
	if err != nil {
		result = "rollback"
	}
	t.hist.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return err
}
