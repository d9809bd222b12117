package metrics_test

import (
	"testing"

	"github.com/aretw0/arttic/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counts(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.Dial("ok")
	m.Dial("ok")
	m.ReconnectScheduled()
	m.ActionDropped("generate_image")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Dials.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reconnects))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SendsDropped.WithLabelValues("generate_image")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Dial("ok")
		m.ReconnectScheduled()
		m.EventReceived("model_loaded")
		m.ActionSent("load_model")
		m.ActionDropped("load_model")
		m.Notice("shown", "info")
		m.Node("create", "lora")
	})
}
