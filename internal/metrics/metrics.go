package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TranscriptionJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcription_jobs_total",
		Help: "Transcription jobs by terminal outcome.",
	}, []string{"outcome"})

	TranscriptionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transcription_duration_seconds",
		Help:    "Wall time of successful transcription jobs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_requests_total",
		Help: "Chat requests by classified intent.",
	}, []string{"intent"})

	GenerationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_generation_seconds",
		Help:    "Latency of generation backend calls.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
