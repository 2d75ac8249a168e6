package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erp/orderdesk/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Fulfillments(t *testing.T) {
	m := NewMetrics()

	m.RecordFulfillment("PURCHASE", 3)
	m.RecordFulfillment("PURCHASE", 4)
	m.RecordFulfillment("SALE", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fulfillments.WithLabelValues("PURCHASE")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.fulfilledQuantity.WithLabelValues("PURCHASE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fulfilledQuantity.WithLabelValues("SALE")))
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.RecordTransition("SALE", "COMPLETED")
	m.RecordDuplicate()
	m.RecordRejection("QUANTITY_EXCEEDED")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.orderTransitions.WithLabelValues("SALE", "COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.duplicateRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fulfillmentRejected.WithLabelValues("QUANTITY_EXCEEDED")))
}

func TestMetrics_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/orders/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "orderdesk_http_requests_total")
}

func TestQueryCacheCollector(t *testing.T) {
	m := NewMetrics()
	qc := cache.NewQueryCache(time.Minute)
	require.NoError(t, m.Register(NewQueryCacheCollector(qc, "dashboard")))

	key := cache.ListKey(cache.ResourceDashboard, "2026-10")
	fetch := func(ctx context.Context) (any, error) { return 1, nil }
	_, _ = qc.Get(context.Background(), key, fetch)
	_, _ = qc.Get(context.Background(), key, fetch)

	expected := `
# HELP orderdesk_cache_hits_total Query cache hits.
# TYPE orderdesk_cache_hits_total counter
orderdesk_cache_hits_total{cache="dashboard"} 1
# HELP orderdesk_cache_misses_total Query cache misses.
# TYPE orderdesk_cache_misses_total counter
orderdesk_cache_misses_total{cache="dashboard"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"orderdesk_cache_hits_total", "orderdesk_cache_misses_total"))
}
