// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homematch_worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homematch_worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homematch_worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	ListingsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homematch_listings_scored_total",
			Help: "Total number of listings scored across all queries",
		},
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homematch_ranking_duration_seconds",
			Help:    "Time to score and rank one query",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homematch_recommendations_total",
			Help: "Recommendations served, by presentation mode",
		},
		[]string{"mode"},
	)

	DatasetListings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homematch_dataset_listings",
			Help: "Number of listings in the loaded dataset",
		},
	)
)

// Recommendation modes.
const (
	ModeRanked = "ranked"
	ModeBrowse = "browse"
)

func ModeLabel(filtersActive bool) string {
	if filtersActive {
		return ModeRanked
	}
	return ModeBrowse
}
