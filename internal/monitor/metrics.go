package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa las métricas Prometheus del monitor.
// Usa un registry propio para no mezclarse con el global en tests.
type Metrics struct {
	registry *prometheus.Registry

	PollsTotal   *prometheus.CounterVec // labels: result=ok|error|skipped
	PollDuration prometheus.Histogram
	LastPrice    *prometheus.GaugeVec // labels: pair
	RSI          *prometheus.GaugeVec // labels: pair
	Volatility   *prometheus.GaugeVec // labels: pair
	HistoryLen   *prometheus.GaugeVec // labels: pair
}

// NewMetrics crea y registra todas las métricas.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptodash_polls_total",
			Help: "Polls executed, by result",
		}, []string{"result"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cryptodash_poll_duration_seconds",
			Help:    "Duration of a full poll (fetch, analyze, notify, store)",
			Buckets: prometheus.DefBuckets,
		}),
		LastPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cryptodash_last_price",
			Help: "Last traded price of the pair",
		}, []string{"pair"}),
		RSI: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cryptodash_rsi14",
			Help: "RSI(14) of the price history; absent until enough history",
		}, []string{"pair"}),
		Volatility: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cryptodash_volatility_percent",
			Help: "Daily range as a percent of the daily low",
		}, []string{"pair"}),
		HistoryLen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cryptodash_history_len",
			Help: "Observations held in the price history",
		}, []string{"pair"}),
	}
	m.registry.MustRegister(m.PollsTotal, m.PollDuration, m.LastPrice, m.RSI, m.Volatility, m.HistoryLen)
	return m
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry devuelve el registry propio (para tests y gatherers externos).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
