package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	segmentsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorbot_segments_emitted_total",
		Help: "Outbound message units emitted by the stream segmenter",
	})

	generationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorbot_generation_failures_total",
		Help: "Generation source requests that failed before or during streaming",
	})
)
