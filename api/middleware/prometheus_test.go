package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(PrometheusMiddleware("test"))
	router.GET("/:username/", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/:username/", "200", "test"))
	for _, path := range []string{"/leo/", "/anna/"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/:username/", "200", "test"))
	assert.Equal(t, before+2, after)
}

func TestRecordMutationAndPageCache(t *testing.T) {
	mutation := mutationsTotal.WithLabelValues("follow", "unchanged")
	before := testutil.ToFloat64(mutation)
	RecordMutation("follow", "unchanged")
	assert.Equal(t, before+1, testutil.ToFloat64(mutation))

	hits := pageCacheRequests.WithLabelValues("hit")
	misses := pageCacheRequests.WithLabelValues("miss")
	hitsBefore, missesBefore := testutil.ToFloat64(hits), testutil.ToFloat64(misses)
	ObservePageCache(true)
	ObservePageCache(false)
	ObservePageCache(false)
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(hits))
	assert.Equal(t, missesBefore+2, testutil.ToFloat64(misses))
}
