package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	t.Parallel()
	m := New()

	m.AIRequest("openai", "success")
	m.AIRequest("openai", "success")
	m.AIRequest("gemini", "not_configured")
	m.BroadcastSend("morning_greeting", true)
	m.BroadcastSend("morning_greeting", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.aiRequests.WithLabelValues("openai", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.broadcastSends.WithLabelValues("morning_greeting", "failed")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `darkjarvis_ai_requests_total{outcome="not_configured",provider="gemini"} 1`)
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AIRequest("openai", "success")
		m.BroadcastSend("x", true)
		m.Update("message")
	})
}
