package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("listings:provision").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("listings:provision").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("listings:provision", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("listings:provision", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("listings:provision")))
}

func TestAddSweptIgnoresEmpty(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddSwept(0)
	m.AddSwept(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.swept))

	var nilMetrics *Metrics
	nilMetrics.AddSwept(3)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
