package kafka

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestConsumerMetricNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	SetConsumerMetricsRegisterer(reg)
	defer SetConsumerMetricsRegisterer(nil)

	initConsumerMetricsOnce()

	consumerQueueDepth.WithLabelValues("trades").Set(1)
	consumerQueueFullness.WithLabelValues("trades").Set(0.5)
	consumerHandleLatency.WithLabelValues("trades").Observe(0.01)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("expected 3 metric families, got %d", len(families))
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "pairpull_kafka_consumer_") {
			t.Fatalf("metric %q not in pairpull namespace", mf.GetName())
		}
	}
}

func TestProducerMetricNames(t *testing.T) {
	initProducerMetricsOnce()

	producerMsgsTotal.WithLabelValues("trades", "gzip", "ok").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	registered := make(map[string]bool)
	for _, mf := range families {
		registered[mf.GetName()] = true
	}
	if !registered["pairpull_kafka_producer_messages_total"] {
		t.Fatal("producer counter not registered under pairpull namespace")
	}
}
