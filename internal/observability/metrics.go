package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	submissionsRecorded   *prometheus.CounterVec
	settingsUpdateFailure prometheus.Counter
	acceptedRepairsTotal  prometheus.Counter
	submissionEventsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API and the judging pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_recorded_total",
			Help: "Submissions persisted, partitioned by whether every test case passed.",
		}, []string{"all_passed"})

		settingsUpdateFailure = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submission_settings_update_failures_total",
			Help: "Best-effort accepted pointer updates that failed.",
		})

		acceptedRepairsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accepted_submission_repairs_total",
			Help: "Settings rows repaired while serving the accepted submission.",
		})

		submissionEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_events_published_total",
			Help: "Submission events published per transport and result.",
		}, []string{"transport", "result"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			submissionsRecorded,
			settingsUpdateFailure,
			acceptedRepairsTotal,
			submissionEventsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// SubmissionsRecorded counts persisted submissions.
func SubmissionsRecorded() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsRecorded
}

// SettingsUpdateFailures counts failed accepted pointer updates.
func SettingsUpdateFailures() prometheus.Counter {
	RegisterMetrics()
	return settingsUpdateFailure
}

// AcceptedRepairs counts self-healing writes.
func AcceptedRepairs() prometheus.Counter {
	RegisterMetrics()
	return acceptedRepairsTotal
}

// SubmissionEvents counts submission event publishes.
func SubmissionEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionEventsTotal
}

// MetricsHandler serves the default registry, which also carries the judge gateway collectors.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
