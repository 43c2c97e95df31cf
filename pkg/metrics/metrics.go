// Package metrics defines the Prometheus metrics every QuantLab subsystem
// publishes, grounded on the pack's PerpLedger observability package (one
// struct of pre-registered collectors, built once via promauto and passed
// around explicitly rather than reached for through a global).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector QuantLab publishes.
type Metrics struct {
	// --- Ingestion (C4) ---
	IngestFetchTotal    *prometheus.CounterVec
	IngestFetchDuration *prometheus.HistogramVec
	IngestValidationFlags *prometheus.CounterVec
	IngestCircuitOpen   *prometheus.CounterVec

	// --- Access service (C6) ---
	AccessRequestTotal    *prometheus.CounterVec
	AccessCacheHitTotal   prometheus.Counter
	AccessCacheMissTotal  prometheus.Counter
	AccessRequestDuration prometheus.Histogram

	// --- Pricing (C8) ---
	PricingValuationTotal    *prometheus.CounterVec
	PricingValuationDuration prometheus.Histogram

	// --- Risk (C9) ---
	RiskEngineRunTotal    *prometheus.CounterVec
	RiskEngineRunDuration *prometheus.HistogramVec

	// --- Stress (C10) ---
	StressScenariosRun      prometheus.Counter
	StressEngineRunDuration prometheus.Histogram
	StressWarningsTotal     *prometheus.CounterVec

	// --- Storage (C5) ---
	StorageWriteTotal *prometheus.CounterVec
	StorageWriteBytes *prometheus.HistogramVec
}

// New builds and registers every QuantLab collector against reg. Passing a
// fresh prometheus.NewRegistry() keeps tests from colliding with the
// default global registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IngestFetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantlab_ingest_fetch_total",
			Help: "Provider fetches attempted, by dataset and outcome",
		}, []string{"dataset_id", "outcome"}),

		IngestFetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quantlab_ingest_fetch_duration_seconds",
			Help:    "Provider fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"dataset_id"}),

		IngestValidationFlags: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantlab_ingest_validation_flags_total",
			Help: "Quality flags raised during normalization/validation, by flag code",
		}, []string{"flag"}),

		IngestCircuitOpen: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantlab_ingest_circuit_open_total",
			Help: "Times the ingestion runner's circuit breaker tripped open, by provider",
		}, []string{"provider"}),

		AccessRequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantlab_access_request_total",
			Help: "GetTimeSeries calls, by outcome",
		}, []string{"outcome"}),

		AccessCacheHitTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "quantlab_access_cache_hit_total",
			Help: "GetTimeSeries calls served entirely from the manifest cache",
		}),

		AccessCacheMissTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "quantlab_access_cache_miss_total",
			Help: "GetTimeSeries calls that invoked the provider",
		}),

		AccessRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "quantlab_access_request_duration_seconds",
			Help:    "GetTimeSeries end-to-end latency",
			Buckets: prometheus.DefBuckets,
		}),

		PricingValuationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantlab_pricing_valuation_total",
			Help: "Portfolio valuations run, by outcome",
		}, []string{"outcome"}),

		PricingValuationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "quantlab_pricing_valuation_duration_seconds",
			Help:    "Portfolio valuation latency",
			Buckets: prometheus.DefBuckets,
		}),

		RiskEngineRunTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantlab_risk_engine_run_total",
			Help: "Risk engine runs, by mode and outcome",
		}, []string{"mode", "outcome"}),

		RiskEngineRunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quantlab_risk_engine_run_duration_seconds",
			Help:    "Risk engine run latency, by mode",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),

		StressScenariosRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "quantlab_stress_scenarios_run_total",
			Help: "Individual scenarios revalued across all stress engine runs",
		}),

		StressEngineRunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "quantlab_stress_engine_run_duration_seconds",
			Help:    "Stress engine run latency for a full scenario set",
			Buckets: prometheus.DefBuckets,
		}),

		StressWarningsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantlab_stress_warnings_total",
			Help: "Warnings raised during stress engine runs, by warning code",
		}, []string{"code"}),

		StorageWriteTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quantlab_storage_write_total",
			Help: "Blobstore Put calls, by zone and outcome",
		}, []string{"zone", "outcome"}),

		StorageWriteBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quantlab_storage_write_bytes",
			Help:    "Size of blobs written, by zone",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}, []string{"zone"}),
	}
}
