package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiaLiangChen99/robyn-admin/internal/observability"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	metrics := observability.NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/UserAdmin/data", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusTeapot, res.Code)
	families, err := metrics.Gatherer().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "admin_http_requests_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCountSerializeFailure(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.CountSerializeFailure("UserAdmin")
	metrics.CountSerializeFailure("UserAdmin")

	families, err := metrics.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "admin_serialize_failures_total" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		assert.Equal(t, float64(2), mf.GetMetric()[0].GetCounter().GetValue())
		return
	}
	t.Fatal("admin_serialize_failures_total not gathered")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *observability.Metrics
	metrics.CountSerializeFailure("x")
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, res.Code)
}
