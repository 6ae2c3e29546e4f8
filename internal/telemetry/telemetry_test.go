package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosfiori/integrador-apis/internal/apperrors"
)

func TestInitProvider_NoEndpoint(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), "integrador-test", "")

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestMetrics_ObserveLookup(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	started := time.Now()

	m.ObserveLookup("viacep", started, nil)
	m.ObserveLookup("viacep", started, &apperrors.NotFoundError{Service: "viacep", Key: "00000000"})
	m.ObserveLookup("ibge", started, &apperrors.TransportError{Service: "ibge", URL: "u", Cause: errors.New("x")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("viacep", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("viacep", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("ibge", "transport")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.LookupDuration))
}

func TestMetrics_ObserveReport(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveReport(nil)
	m.ObserveReport(&apperrors.ParseError{Service: "brasilapi", URL: "u", Cause: errors.New("x")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reports.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reports.WithLabelValues("parse")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveLookup("viacep", time.Now(), nil)
		m.ObserveReport(nil)
	})
}
