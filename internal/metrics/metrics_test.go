package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrometheus(t *testing.T) *Prometheus {
	t.Helper()
	m, err := NewPrometheus(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}

func TestPrometheus_Counters(t *testing.T) {
	m := newTestPrometheus(t)

	m.RecordVerdict("ok")
	m.RecordVerdict("ok")
	m.RecordVerdict("low_clarity")
	m.RecordModelAttempt("gemini-2.0-flash", "ok", 1500*time.Millisecond)
	m.RecordModelAttempt("gemini-2.0-flash", "MODEL_PROTOCOL", time.Second)
	m.RecordRedactions("email", 2)
	m.RecordRedactions("phone", 0)
	m.RecordPIILeak()
	m.RecordCacheAccess(true)
	m.RecordCacheAccess(false)
	m.RecordCacheAccess(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.verdicts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verdicts.WithLabelValues("low_clarity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelAttempts.WithLabelValues("gemini-2.0-flash", "MODEL_PROTOCOL")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.redactions.WithLabelValues("email")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.redactions), "a zero count creates no series")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.piiLeaks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheAccess.WithLabelValues("miss")))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestPrometheus(t)

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, p := range []string{"/items/1", "/items/2", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/items/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNoop_NoPanic(t *testing.T) {
	rec := NewNoop()
	assert.NotPanics(t, func() {
		rec.RecordVerdict("ok")
		rec.RecordModelAttempt("m", "ok", time.Second)
		rec.RecordRedactions("email", 1)
		rec.RecordPIILeak()
		rec.RecordCacheAccess(true)
		rec.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	})
}
