package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AccessChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joeshare_access_checks_total",
		Help: "Authorization resolutions, labelled by outcome and channel.",
	}, []string{"result", "via"})

	AccessCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "joeshare_access_check_duration_seconds",
		Help:    "Time to compute one authorization decision.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	})

	TokenResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joeshare_token_resolutions_total",
		Help: "Share link token resolutions, labelled by outcome.",
	}, []string{"status"})

	ConnectionMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joeshare_connection_mutations_total",
		Help: "Connection graph mutations, labelled by operation.",
	}, []string{"op"})

	ShareMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joeshare_share_mutations_total",
		Help: "Share config and grant mutations, labelled by operation.",
	}, []string{"op"})

	AccessLogWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joeshare_access_log_writes_total",
		Help: "Access log rows successfully written to the database.",
	})

	AccessLogWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joeshare_access_log_write_errors_total",
		Help: "Access log insert failures.",
	})
)
