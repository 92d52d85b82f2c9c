package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, metrics.Track("lead:notify").End(nil))
	boom := errors.New("smtp down")
	assert.ErrorIs(t, metrics.Track("lead:notify").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("lead:notify", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("lead:notify", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("lead:notify")))
}

func TestEmailSent(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	metrics.EmailSent(true)
	metrics.EmailSent(false)
	metrics.EmailSent(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.emails.WithLabelValues("sent")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.emails.WithLabelValues("failed")))
}

func TestNilMetricsTrackerPassesErrorThrough(t *testing.T) {
	var metrics *Metrics
	boom := errors.New("x")
	assert.ErrorIs(t, metrics.Track("job").End(boom), boom)
	metrics.EmailSent(true)
}
