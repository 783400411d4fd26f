package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway. A nil *Metrics is
// valid and records nothing, which keeps handler tests free of registries.
type Metrics struct {
	TokensIssued         prometheus.Counter
	TokenVerifications   *prometheus.CounterVec
	CodeExchanges        *prometheus.CounterVec
	CodeExchangeDuration prometheus.Histogram
	SSOOutcomes          *prometheus.CounterVec
	CLIDownloads         *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "aiproxy_tokens_issued_total",
			Help: "Total number of access tokens minted by the gateway",
		}),
		TokenVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aiproxy_token_verifications_total",
			Help: "Bearer token checks on protected endpoints by result (valid, invalid, missing)",
		}, []string{"result"}),
		CodeExchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aiproxy_code_exchanges_total",
			Help: "Authorization code exchanges by exchanger mode and outcome",
		}, []string{"mode", "outcome"}),
		CodeExchangeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aiproxy_code_exchange_duration_seconds",
			Help:    "Latency of authorization code exchanges against the identity provider",
			Buckets: prometheus.DefBuckets,
		}),
		SSOOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aiproxy_sso_outcomes_total",
			Help: "Terminal outcomes of SSO login and callback requests",
		}, []string{"endpoint", "outcome"}),
		CLIDownloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aiproxy_cli_downloads_total",
			Help: "CLI binary downloads by platform",
		}, []string{"platform"}),
	}
}

func (m *Metrics) IncrementTokensIssued() {
	if m == nil {
		return
	}
	m.TokensIssued.Inc()
}

func (m *Metrics) RecordTokenVerification(result string) {
	if m == nil {
		return
	}
	m.TokenVerifications.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordCodeExchange(mode, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CodeExchanges.WithLabelValues(mode, outcome).Inc()
	m.CodeExchangeDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordSSOOutcome(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.SSOOutcomes.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) IncrementCLIDownloads(platform string) {
	if m == nil {
		return
	}
	m.CLIDownloads.WithLabelValues(platform).Inc()
}
