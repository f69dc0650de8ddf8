package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_errors_total",
			Help: "Total number of logged errors and typed warnings.",
		},
		[]string{"type", "level"},
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobmatch_api_request_duration_seconds",
			Help:    "Duration of requests to the job matching API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "outcome"},
	)
	RoleChangesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_role_changes_total",
			Help: "Total number of accepted role change requests.",
		},
		[]string{"role"},
	)
	JobPostingsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_job_postings_total",
			Help: "Job posting saga transitions by resulting state.",
		},
		[]string{"state"},
	)
	ApplicationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_applications_total",
			Help: "Application lifecycle actions by outcome.",
		},
		[]string{"action", "outcome"},
	)
	StaleResponsesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmatch_stale_responses_total",
			Help: "Total number of responses discarded because their view was gone.",
		},
	)
)

func StartMetricsServer(addr string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(RoleChangesCounter)
	prometheus.MustRegister(JobPostingsCounter)
	prometheus.MustRegister(ApplicationsCounter)
	prometheus.MustRegister(StaleResponsesCounter)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(addr, mux))
	}()
}
