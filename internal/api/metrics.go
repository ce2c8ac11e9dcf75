package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comorbid_scores_total",
		Help: "Number of scores computed, by mapping version and match mode.",
	}, []string{"mapping", "mode"})

	scoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comorbid_score_errors_total",
		Help: "Number of failed scoring requests, by reason.",
	}, []string{"reason"})

	scoreValues = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "comorbid_score_value",
		Help:    "Distribution of computed comorbidity scores.",
		Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 10, 15, 20, 29},
	})
)
