package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus series exposed on /metrics. A nil *Metrics
// is valid and records nothing, which keeps services usable in tests.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	movimientos     *prometheus.CounterVec
	unidades        *prometheus.CounterVec
	operaciones     *prometheus.CounterVec
}

// NewMetrics initialises a private registry with HTTP and inventory metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventario_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	movimientos := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_movimientos_stock_total",
		Help: "Stock movements written, by origin and reason.",
	}, []string{"tipo", "motivo"})
	unidades := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_unidades_stock_total",
		Help: "Units moved in or out of stock.",
	}, []string{"direccion"})
	operaciones := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_operaciones_total",
		Help: "Committed record operations by resource and operation.",
	}, []string{"recurso", "operacion"})

	registry.MustRegister(
		requests, duration, movimientos, unidades, operaciones,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		movimientos:     movimientos,
		unidades:        unidades,
		operaciones:     operaciones,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records one sample per request, labelled with the matched route
// pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// MovimientoStock records one committed stock movement.
func (m *Metrics) MovimientoStock(tipo, motivo string, delta int) {
	if m == nil {
		return
	}
	m.movimientos.WithLabelValues(tipo, motivo).Inc()
	if delta >= 0 {
		m.unidades.WithLabelValues("entrada").Add(float64(delta))
	} else {
		m.unidades.WithLabelValues("salida").Add(float64(-delta))
	}
}

// Operacion records a committed create/update/delete.
func (m *Metrics) Operacion(recurso, operacion string) {
	if m == nil {
		return
	}
	m.operaciones.WithLabelValues(recurso, operacion).Inc()
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}
