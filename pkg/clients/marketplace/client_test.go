package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportQuantity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/devices/vendors/v1/stock/Nile Tilapia", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get(deviceKeyHeader))

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 9, body["quantity"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Nile Tilapia","quantity":9,"price":120}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", DeviceKey: "key"})
	entry, err := c.ReportQuantity(context.Background(), "v1", "Nile Tilapia", 9)
	require.NoError(t, err)
	require.NotNil(t, entry.Quantity)
	assert.Equal(t, 9, *entry.Quantity)
	assert.Equal(t, 120.0, entry.Price)
}

func TestReportQuantityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, DeviceKey: "bad"})
	_, err := c.ReportQuantity(context.Background(), "v1", "Tilapia", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=401")
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestHealth(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	assert.NoError(t, c.Health(context.Background()))

	status = http.StatusServiceUnavailable
	assert.Error(t, c.Health(context.Background()))
}
