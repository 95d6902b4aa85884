package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every collector exposed on /metrics.
	Registry = prometheus.NewRegistry()

	exportRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdpr_export_requests_total",
			Help: "Total export requests by outcome",
		},
		[]string{"outcome"},
	)

	exportUnitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdpr_export_units_total",
			Help: "Export units processed by kind and result",
		},
		[]string{"kind", "result"},
	)

	exportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gdpr_export_duration_ms",
		Help:    "Export duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	exportArchiveBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gdpr_export_archive_bytes",
		Help:    "Size of generated export archives",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	prunedFilesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gdpr_export_pruned_files_total",
		Help: "Export files removed by the retention janitor",
	})
)

func init() {
	Registry.MustRegister(
		exportRequestsTotal,
		exportUnitsTotal,
		exportDuration,
		exportArchiveBytes,
		prunedFilesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncExportRequest counts one export request with the given outcome
// (archive, empty, not_found, unavailable, error).
func IncExportRequest(outcome string) {
	exportRequestsTotal.WithLabelValues(outcome).Inc()
}

// IncExportUnit counts one processed unit. kind is user or linked; result is
// written, skipped or failed.
func IncExportUnit(kind, result string) {
	exportUnitsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveExportDurationMs records an export duration in milliseconds.
func ObserveExportDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	exportDuration.Observe(value)
}

// ObserveArchiveBytes records the size of a built archive.
func ObserveArchiveBytes(size int64) {
	exportArchiveBytes.Observe(float64(size))
}

// AddPrunedFiles counts files removed by retention.
func AddPrunedFiles(n int) {
	prunedFilesTotal.Add(float64(n))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
