package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordRun(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordRun("ma_cross", "success")
		RecordRun("ma_cross", "failure")
	})
}

func TestRecordSweep(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSweep(1.5)
	})
}

func TestRecordMarketDataFetch(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordMarketDataFetch("eastmoney", "success")
		RecordMarketDataCacheHit()
	})
}

func TestUpdatePoolSize(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		UpdatePoolSize("watching", 12)
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	assert.NotNil(t, Handler())
}
