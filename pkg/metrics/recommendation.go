package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendation HTTP handlers
	RecommendationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommendation_request_latency_seconds",
		Help:    "Latency of recommendation handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Total number of recommendation requests served
	RecommendationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_requests_total",
		Help: "Total number of recommendation requests",
	}, []string{"operation"})

	// Trending cache hits/misses at the REST layer
	TrendingCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trending_cache_hits_total",
		Help: "Trending cache hits",
	})
	TrendingCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trending_cache_misses_total",
		Help: "Trending cache misses",
	})

	// Score worker queue state
	ScoreWorkerQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "score_worker_queue_depth",
		Help: "Pending tasks in the score worker queue",
	})
	ScoreWorkerDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "score_worker_dropped_tasks_total",
		Help: "Score tasks rejected because the queue was full",
	})
	ScoreWorkerFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "score_worker_task_failures_total",
		Help: "Score tasks that failed during processing",
	})
)

func Init() {
	prometheus.MustRegister(
		RecommendationLatency,
		RecommendationRequests,
		TrendingCacheHits,
		TrendingCacheMisses,
		ScoreWorkerQueueDepth,
		ScoreWorkerDropped,
		ScoreWorkerFailures,
	)
}
