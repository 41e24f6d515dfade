package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_submitted_total",
			Help: "Total number of accepted review submissions by rating",
		},
		[]string{"rating"},
	)

	reviewsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_rejected_total",
			Help: "Total number of rejected review submissions by reason",
		},
		[]string{"reason"},
	)
)
