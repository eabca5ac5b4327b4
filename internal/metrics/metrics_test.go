package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_StoreRequests(t *testing.T) {
	r := New()
	r.ObserveStoreRequest("list", 200, 10*time.Millisecond)
	r.ObserveStoreRequest("list", 200, 20*time.Millisecond)
	r.ObserveStoreRequest("get", 404, time.Millisecond)
	r.ObserveStoreRequest("get", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.storeRequests.WithLabelValues("list", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.storeRequests.WithLabelValues("get", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.storeRequests.WithLabelValues("get", "error")))
}

func TestRecorder_Search(t *testing.T) {
	r := New()
	r.ObserveSearch(SearchIssued)
	r.ObserveSearch(SearchDiscarded)
	r.ObserveSearch(SearchIssued)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.searches.WithLabelValues(SearchIssued)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.searches.WithLabelValues(SearchDiscarded)))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveStoreRequest("list", 200, time.Second)
		r.ObserveAPIRequest("GET", "/employees", 200, time.Second)
		r.ObserveSearch(SearchApplied)
	})
	assert.Nil(t, r.Registry())
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveAPIRequest("GET", "/employees", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `employee_directory_api_requests_total{code="200",method="GET",route="/employees"} 1`)
}
