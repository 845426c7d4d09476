package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symcalc_tool_calls_total",
		Help: "Tool calls by tool and outcome",
	}, []string{"tool", "outcome"})

	toolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "symcalc_tool_call_duration_seconds",
		Help:    "Time spent answering a tool call",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"tool"})
)
