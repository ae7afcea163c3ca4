package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartobjects_records_decoded_total",
		Help: "Total number of records decoded from the wire, labelled by entity.",
	}, []string{"entity"})

	DecodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartobjects_decode_failures_total",
		Help: "Total number of rejected payloads, labelled by entity and reason (parse|validation).",
	}, []string{"entity", "reason"})

	RecordsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smartobjects_records_enqueued_total",
		Help: "Total number of records placed on the publish queue.",
	})

	RecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smartobjects_records_dropped_total",
		Help: "Total number of records rejected due to a full queue.",
	})

	RecordsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartobjects_records_published_total",
		Help: "Total number of records written to the sink, labelled by topic.",
	}, []string{"topic"})

	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartobjects_publish_failures_total",
		Help: "Total number of failed sink writes, labelled by topic.",
	}, []string{"topic"})

	PublishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "smartobjects_publish_duration_ms",
		Help:    "Sink write latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "smartobjects_queue_utilization_ratio",
		Help: "Current publish queue utilization (0–1).",
	})
)
