package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelmaker_history_records_total",
		Help: "Total number of diffs recorded in canvas history",
	})

	evictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelmaker_history_evictions_total",
		Help: "Number of diffs dropped because the undo history was full",
	})

	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelmaker_history_steps_total",
		Help: "Number of diffs wound through history, by direction",
	}, []string{"direction"})

	retainedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pixelmaker_history_retained",
		Help: "Diffs currently held in undo and redo histories",
	})
)
