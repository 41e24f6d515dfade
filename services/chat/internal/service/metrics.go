package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatSessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_created_total",
			Help: "Total number of chat sessions created",
		},
	)

	chatRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_replies_total",
			Help: "Total number of assistant replies delivered by responder, category and outcome",
		},
		[]string{"responder", "category", "outcome"},
	)

	chatRepliesDiscardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_replies_discarded_total",
			Help: "Total number of assistant replies dropped before delivery by reason",
		},
		[]string{"reason"},
	)

	chatReplyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_reply_generation_seconds",
			Help:    "Time spent choosing or generating a reply, excluding the typing delay",
			Buckets: []float64{.001, .01, .1, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"responder"},
	)

	chatHandoffsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_handoffs_total",
			Help: "Total number of accepted human handoff requests",
		},
	)
)
