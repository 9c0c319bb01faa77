package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m.HTTPRequestsTotal)
	require.NotNil(t, m.HTTPRequestDuration)
	require.NotNil(t, m.ReservationsTotal)
	require.NotNil(t, m.CancellationsTotal)
	require.NotNil(t, m.VersionConflictsTotal)
	require.NotNil(t, m.AvailableSeats)
}

func TestMetrics_カウンターとゲージの記録(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ReservationsTotal.WithLabelValues("confirmed").Inc()
	m.ReservationsTotal.WithLabelValues("confirmed").Inc()
	m.ReservationsTotal.WithLabelValues("insufficient_seats").Inc()
	m.CancellationsTotal.WithLabelValues("cancelled").Inc()
	m.VersionConflictsTotal.Inc()
	m.AvailableSeats.Set(498)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("confirmed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("insufficient_seats")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CancellationsTotal.WithLabelValues("cancelled")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.VersionConflictsTotal))
	assert.Equal(t, float64(498), testutil.ToFloat64(m.AvailableSeats))
}

func TestMetrics_同じレジストリへの二重登録はパニック(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegistry(reg)

	assert.Panics(t, func() {
		NewWithRegistry(reg)
	})
}
