package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// forwardProxy answers every proxied request itself.
func forwardProxy(t *testing.T, status int) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestSupplier_NoProxies(t *testing.T) {
	s := NewSupplier(context.Background(), nil, "http://backend.test/api/config")
	assert.Equal(t, "", s.Get())
}

func TestSupplier_KeepsReachableInOrder(t *testing.T) {
	good1 := forwardProxy(t, http.StatusOK)
	bad := forwardProxy(t, http.StatusBadGateway)
	good2 := forwardProxy(t, http.StatusOK)

	s := NewSupplier(context.Background(), []string{good1, bad, good2}, "http://backend.test/api/config")

	assert.Equal(t, good1, s.Get())
	assert.Equal(t, good2, s.Get())
	assert.Equal(t, good1, s.Get(), "wraps around")
}

func TestSupplier_DropsUnreachable(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	s := NewSupplier(context.Background(), []string{closed.URL}, "http://backend.test/api/config")

	assert.Equal(t, "", s.Get())
}
