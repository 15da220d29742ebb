package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDetection(t *testing.T) {
	m := New()
	m.ObserveDetection(true, nil)
	m.ObserveDetection(false, nil)
	m.ObserveDetection(false, nil)
	m.ObserveDetection(true, errors.New("grab failed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DetectionTicks.WithLabelValues("present")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DetectionTicks.WithLabelValues("absent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DetectionTicks.WithLabelValues("error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveDetection(true, nil)
	m.ObserveAuth("login", true)
	m.SessionStarted()
	m.ObserveSession(true, 0.1)
	m.ObserveMock("/process", 200)
}

func TestObserveSession(t *testing.T) {
	m := New()
	m.SessionStarted()
	m.ObserveSession(true, 0.2)
	m.ObserveSession(false, 1.5)
	m.ObserveMock("/login", 401)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MockRequests.WithLabelValues("/login", "401")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.SessionsStarted.Inc()
	m.ObserveAuth("signup", false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.True(t, strings.Contains(out, "vitalscan_sessions_started_total 1"))
	assert.True(t, strings.Contains(out, `vitalscan_auth_submissions_total{form="signup",outcome="rejected"} 1`))
}
