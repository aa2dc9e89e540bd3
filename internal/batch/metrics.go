package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lease_batch_items_total",
			Help: "Total number of batch items by final status",
		},
		[]string{"job", "status"},
	)

	ItemDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lease_batch_item_duration_seconds",
			Help: "Duration of a single batch item in seconds",
		},
		[]string{"job"},
	)

	ItemsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lease_batch_items_active",
			Help: "Number of batch items currently being processed",
		},
		[]string{"job"},
	)
)
