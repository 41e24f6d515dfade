package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var inquiriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inquiries_total",
		Help: "Total number of form submissions by kind and outcome",
	},
	[]string{"kind", "outcome"},
)
