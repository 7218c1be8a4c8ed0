package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincheck_predictions_total",
			Help: "Total predictions served, by predicted label",
		},
		[]string{"label"},
	)

	PredictionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raincheck_prediction_errors_total",
			Help: "Total predictions that failed in the classifier",
		},
	)

	PredictionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "raincheck_prediction_latency_seconds",
			Help:    "Encode plus classify latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	EncodeUnknownCategory = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincheck_encode_unknown_category_total",
			Help: "Categorical labels that matched no one-hot slot",
		},
		[]string{"category"},
	)

	PredictionCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincheck_prediction_cache_total",
			Help: "Prediction cache lookups by result",
		},
		[]string{"result"},
	)

	ArtifactFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincheck_artifact_fetch_total",
			Help: "Artifact download attempts by artifact and status",
		},
		[]string{"artifact", "status"},
	)

	ArtifactFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "raincheck_artifact_fetch_latency_seconds",
			Help:    "Artifact download latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"artifact"},
	)

	NarrativesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincheck_narratives_total",
			Help: "Narratives generated, by source and status",
		},
		[]string{"source", "status"},
	)
)
