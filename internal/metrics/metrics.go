package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorpay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "creatorpay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	EarningsReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorpay_earnings_reads_total",
			Help: "Total number of earnings aggregations",
		},
		[]string{"degraded"},
	)

	AdapterFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorpay_revenue_adapter_failures_total",
			Help: "Total number of revenue source adapter read failures",
		},
		[]string{"source"},
	)

	PayoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorpay_payouts_total",
			Help: "Total number of payout requests by outcome",
		},
		[]string{"outcome"},
	)

	MigrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorpay_migrations_total",
			Help: "Total number of balance migration attempts by result",
		},
		[]string{"result"},
	)

	ReferralRecordsSyncedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "creatorpay_referral_records_synced_total",
			Help: "Total number of new referral records discovered by sync",
		},
	)

	ReferralSyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creatorpay_referral_sync_runs_total",
			Help: "Total number of referral sync runs",
		},
		[]string{"trigger", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordEarningsRead(degraded bool) {
	if degraded {
		EarningsReadsTotal.WithLabelValues("true").Inc()
		return
	}
	EarningsReadsTotal.WithLabelValues("false").Inc()
}

func RecordAdapterFailure(source string) {
	AdapterFailuresTotal.WithLabelValues(source).Inc()
}

func RecordPayout(outcome string) {
	PayoutsTotal.WithLabelValues(outcome).Inc()
}

func RecordMigration(result string) {
	MigrationsTotal.WithLabelValues(result).Inc()
}

func RecordReferralSync(trigger, status string, newRecords int) {
	ReferralSyncRunsTotal.WithLabelValues(trigger, status).Inc()
	if newRecords > 0 {
		ReferralRecordsSyncedTotal.Add(float64(newRecords))
	}
}
