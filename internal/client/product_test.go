package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /products/p1/check-availability", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		q := body["quantity"]
		_ = json.NewEncoder(w).Encode(map[string]any{
			"productId":         "p1",
			"available":         q <= 5,
			"requestedQuantity": q,
			"currentStock":      5,
		})
	})
	mux.HandleFunc("GET /products/p1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "p1", "name": "Widget", "price": 9.99, "stock": 5,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Product not found"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckAvailability(t *testing.T) {
	srv := newProductServer(t)
	pc := NewHTTPProductClient(srv.URL, srv.Client())

	av, err := pc.CheckAvailability(context.Background(), "p1", 2)
	require.NoError(t, err)
	assert.True(t, av.Available)
	assert.Equal(t, 5, av.CurrentStock)

	av, err = pc.CheckAvailability(context.Background(), "p1", 10)
	require.NoError(t, err)
	assert.False(t, av.Available)
	assert.Equal(t, 10, av.RequestedQuantity)
}

func TestCheckAvailabilityNotFound(t *testing.T) {
	srv := newProductServer(t)
	pc := NewHTTPProductClient(srv.URL, srv.Client())

	_, err := pc.CheckAvailability(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetProduct(t *testing.T) {
	srv := newProductServer(t)
	pc := NewHTTPProductClient(srv.URL, srv.Client())

	p, err := pc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, 9.99, p.Price)

	_, err = pc.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUnreachableCarriesCause(t *testing.T) {
	srv := newProductServer(t)
	srv.Close() // connection refused from here on

	pc := NewHTTPProductClient(srv.URL, &http.Client{Timeout: time.Second})

	_, err := pc.CheckAvailability(context.Background(), "p1", 1)
	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Error(t, unreachable.Cause)

	_, err = pc.GetProduct(context.Background(), "p1")
	assert.ErrorAs(t, err, &unreachable)
}

func TestUnexpectedStatusIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	pc := NewHTTPProductClient(srv.URL, srv.Client())
	_, err := pc.CheckAvailability(context.Background(), "p1", 1)
	var unreachable *UnreachableError
	assert.ErrorAs(t, err, &unreachable)
}
