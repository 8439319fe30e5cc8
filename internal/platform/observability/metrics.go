package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignalsHarvested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulsesift_signals_harvested_total",
		Help: "The total number of signals harvested, by source",
	}, []string{"source"})

	PipelineProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulsesift_pipeline_processed_total",
		Help: "The total number of signals processed by the pipeline",
	}, []string{"status"})

	DuplicatesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulsesift_duplicates_removed_total",
		Help: "The total number of signals absorbed into duplicate groups",
	})

	DedupRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulsesift_dedup_rate_percent",
		Help: "Share of the last batch removed as duplicates, in percent",
	})

	DedupBatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulsesift_dedup_batch_duration_seconds",
		Help:    "Duration in seconds of one deduplication batch",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	ClassifierRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulsesift_classifier_request_duration_seconds",
		Help:    "Duration of sentiment classifier requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	SentimentCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulsesift_sentiment_cache_events_total",
		Help: "Sentiment cache hits, misses, and evictions",
	}, []string{"event"})

	PipelineBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulsesift_pipeline_backlog_size",
		Help: "Number of unprocessed signals in the database",
	})
)
