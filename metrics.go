package cardpress

import (
	"errors"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/cardpress/og"
)

// cardMetrics counts card renders by outcome and times the successful ones.
type cardMetrics struct {
	renders *prometheus.CounterVec
	latency prometheus.Histogram
}

func newCardMetrics(reg prometheus.Registerer) *cardMetrics {
	m := &cardMetrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardpress",
			Name:      "card_renders_total",
			Help:      "Preview card render attempts by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cardpress",
			Name:      "card_render_duration_seconds",
			Help:      "Time to lay out, draw and encode a preview card.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
	}
	reg.MustRegister(m.renders, m.latency)
	return m
}

func (m *cardMetrics) observe(err error, d time.Duration) {
	result := "ok"
	switch {
	case err == nil:
		m.latency.Observe(d.Seconds())
	case errors.Is(err, og.ErrMissingTitle):
		result = "missing_title"
	case errors.Is(err, og.ErrFontUnavailable):
		result = "font_unavailable"
	default:
		result = "error"
	}
	m.renders.WithLabelValues(result).Inc()
}

// metricsMiddleware records per-route request counts and latencies into the
// app's own registry, so several Apps can coexist in one process.
func (a *App) metricsMiddleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "cardpress",
		Registerer: a.registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}

func (a *App) metricsHandler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.registry})
}
