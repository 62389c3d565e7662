package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/clothing-store/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	success := metrics.CartOperations.WithLabelValues("test_op", metrics.OutcomeSuccess)
	failure := metrics.CartOperations.WithLabelValues("test_op", metrics.OutcomeError)
	beforeSuccess := testutil.ToFloat64(success)
	beforeFailure := testutil.ToFloat64(failure)

	metrics.ObserveOperation("test_op", nil)
	metrics.ObserveOperation("test_op", errors.New("boom"))
	metrics.ObserveOperation("test_op", nil)

	assert.Equal(t, beforeSuccess+2, testutil.ToFloat64(success))
	assert.Equal(t, beforeFailure+1, testutil.ToFloat64(failure))
}

func TestMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/carts/{userId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	server := httptest.NewServer(metrics.Middleware(mux))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/carts/64b7f0c2a1b2c3d4e5f6aaaa")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{code="404",method="GET",path="GET /api/carts/{userId}"}`)
	assert.NotContains(t, string(body), "64b7f0c2a1b2c3d4e5f6aaaa", "raw ids must not become label values")
}
