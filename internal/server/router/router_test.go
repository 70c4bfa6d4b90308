package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishtrace/internal/config"
	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository/memory"
	"github.com/mamadbah2/fishtrace/internal/server/handlers"
	"github.com/mamadbah2/fishtrace/internal/service/admin"
	"github.com/mamadbah2/fishtrace/internal/service/auth"
	"github.com/mamadbah2/fishtrace/internal/service/availability"
	"github.com/mamadbah2/fishtrace/internal/service/marketplace"
	"github.com/mamadbah2/fishtrace/internal/service/vendors"
)

const deviceKey = "scale-key"

type testServer struct {
	engine http.Handler
	store  *memory.Store
}

type stubExporter struct {
	rows  int
	err   error
	calls int
}

func (e *stubExporter) ExportStock(context.Context) (int, error) {
	e.calls++
	return e.rows, e.err
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithExporter(t, nil)
}

func newTestServerWithExporter(t *testing.T, exporter handlers.StockExporter) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	adminHash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)
	vendorHash, err := auth.HashPassword("ama-pass")
	require.NoError(t, err)

	for _, name := range []string{"Tilapia", "Catfish"} {
		require.NoError(t, store.CreateFish(ctx, models.CatalogFish{Name: name}))
	}
	require.NoError(t, store.CreateVendor(ctx, models.Vendor{
		ID:           "v1",
		StallName:    "Ama's Catch",
		Location:     "Makola",
		Username:     "ama",
		PasswordHash: vendorHash,
		FishList:     []models.StockEntry{},
	}))

	engine := availability.NewEngine(5 * time.Second)
	sessions := auth.NewSessionManager(time.Hour, now)
	authSvc := auth.NewService(config.AuthConfig{
		AdminUsername:     "admin",
		AdminPasswordHash: adminHash,
		DeviceKey:         deviceKey,
		SessionTTL:        time.Hour,
	}, store, sessions, nil)
	vendorSvc := vendors.NewService(store, store, store, store, engine, now, nil)

	h := Handlers{
		Buyer:  handlers.NewBuyerHandler(marketplace.NewService(store, store, store, engine, now, nil), nil),
		Auth:   handlers.NewAuthHandler(authSvc, nil),
		Vendor: handlers.NewVendorHandler(vendorSvc, nil),
		Admin:  handlers.NewAdminHandler(admin.NewService(store, authSvc, engine, now, nil), exporter, nil),
		Device: handlers.NewDeviceHandler(vendorSvc, nil),
		Health: handlers.NewHealthHandler(store, nil),
	}
	return &testServer{engine: New(h, authSvc, nil), store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}, headers ...string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (s *testServer) login(t *testing.T, role, username, password string) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/auth/"+role+"/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, code)
	return body["token"].(string)
}

func fishNames(t *testing.T, body map[string]interface{}) map[string]map[string]interface{} {
	t.Helper()
	list, ok := body["fish"].([]interface{})
	require.True(t, ok)
	out := map[string]map[string]interface{}{}
	for _, item := range list {
		fish := item.(map[string]interface{})
		out[fish["name"].(string)] = fish
	}
	return out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	s := newTestServer(t)

	code, wrongPass := s.do(t, http.MethodPost, "/api/auth/vendor/login", "", map[string]string{"username": "ama", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, unknown := s.do(t, http.MethodPost, "/api/auth/vendor/login", "", map[string]string{"username": "ghost", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, wrongPass, unknown)
	assert.Equal(t, "invalid credentials", unknown["error"])

	code, _ = s.do(t, http.MethodPost, "/api/auth/admin/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	vendorToken := s.login(t, "vendor", "ama", "ama-pass")

	code, _ := s.do(t, http.MethodGet, "/api/admin/vendors", vendorToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/api/vendor/stall", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodPost, "/api/auth/logout", vendorToken, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(t, http.MethodGet, "/api/vendor/stall", vendorToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestVendorDeviceBuyerFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "vendor", "ama", "ama-pass")

	code, _ := s.do(t, http.MethodPost, "/api/vendor/fish", token, map[string]interface{}{"name": "Tilapia", "price": 120})
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do(t, http.MethodPost, "/api/vendor/fish", token, map[string]interface{}{"name": "Tilapia", "price": 90})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = s.do(t, http.MethodPost, "/api/vendor/fish", token, map[string]interface{}{"name": "Tilapia"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPut, "/api/devices/vendors/v1/stock/Tilapia", "", map[string]int{"quantity": 7}, "X-Device-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(t, http.MethodPut, "/api/devices/vendors/v1/stock/Tilapia", "", map[string]int{"quantity": -1}, "X-Device-Key", deviceKey)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(t, http.MethodPut, "/api/devices/vendors/v1/stock/Tilapia", "", map[string]int{"quantity": models.MaxQuantity + 1}, "X-Device-Key", deviceKey)
	assert.Equal(t, http.StatusBadRequest, code)
	code, entry := s.do(t, http.MethodPut, "/api/devices/vendors/v1/stock/Tilapia", "", map[string]int{"quantity": 7}, "X-Device-Key", deviceKey)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(7), entry["quantity"])

	code, body := s.do(t, http.MethodGet, "/api/catalog", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No Stock", fishNames(t, body)["Tilapia"]["status"])

	code, _ = s.do(t, http.MethodPost, "/api/vendor/heartbeat", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodGet, "/api/catalog?search=tila", "", nil)
	require.Equal(t, http.StatusOK, code)
	fish := fishNames(t, body)
	require.Len(t, fish, 1)
	assert.Equal(t, "Available", fish["Tilapia"]["status"])
	assert.Equal(t, float64(7), fish["Tilapia"]["totalQuantity"])

	code, body = s.do(t, http.MethodGet, "/api/stalls?location=makola&fish=Tilapia", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["stalls"], 1)

	code, _ = s.do(t, http.MethodGet, "/api/catalog/Shark", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(t, http.MethodGet, "/api/vendor/activity", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["entries"], 1)
}

func TestDisabledFishHiddenFromBuyersOnly(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin", "admin", "admin-pass")

	code, _ := s.do(t, http.MethodPost, "/api/admin/catalog/Catfish/disable", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, body := s.do(t, http.MethodGet, "/api/catalog", "", nil)
	require.Equal(t, http.StatusOK, code)
	buyer := fishNames(t, body)
	assert.NotContains(t, buyer, "Catfish")
	assert.Contains(t, buyer, "Tilapia")

	code, _ = s.do(t, http.MethodGet, "/api/catalog/Catfish", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(t, http.MethodGet, "/api/admin/catalog", token, nil)
	require.Equal(t, http.StatusOK, code)
	adminView := fishNames(t, body)
	require.Contains(t, adminView, "Catfish")
	assert.Equal(t, true, adminView["Catfish"]["disabled"])
	assert.Equal(t, false, adminView["Tilapia"]["disabled"])

	code, body = s.do(t, http.MethodGet, "/api/admin/activity", token, nil)
	require.Equal(t, http.StatusOK, code)
	entries := body["entries"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionDisableFish, entries[0].(map[string]interface{})["action"])
}

func TestAdminVendorAndCatalogManagement(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin", "admin", "admin-pass")

	code, created := s.do(t, http.MethodPost, "/api/admin/vendors", token, map[string]string{
		"stallName": "Kofi Fresh", "location": "Tema", "username": "kofi", "password": "kofi-pass",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "kofi", created["username"])
	assert.NotContains(t, created, "passwordHash")

	code, _ = s.do(t, http.MethodPost, "/api/admin/vendors", token, map[string]string{
		"stallName": "Dup", "location": "Tema", "username": "kofi", "password": "x",
	})
	assert.Equal(t, http.StatusConflict, code)

	kofi := s.login(t, "vendor", "kofi", "kofi-pass")
	code, _ = s.do(t, http.MethodDelete, "/api/admin/vendors/"+created["id"].(string), token, nil)
	require.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(t, http.MethodGet, "/api/vendor/stall", kofi, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodPost, "/api/admin/catalog", token, map[string]string{"name": "tilapia"})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = s.do(t, http.MethodPost, "/api/admin/catalog", token, map[string]string{"name": "Salmon", "image": "s.png"})
	require.Equal(t, http.StatusCreated, code)
	code, renamed := s.do(t, http.MethodPut, "/api/admin/catalog/Salmon", token, map[string]string{"name": "Atlantic Salmon"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "s.png", renamed["image"])
	code, _ = s.do(t, http.MethodDelete, "/api/admin/catalog/Atlantic%20Salmon", token, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = s.do(t, http.MethodPost, "/api/admin/reports/stock", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestAdminStockExportRunsInline(t *testing.T) {
	exporter := &stubExporter{rows: 3}
	s := newTestServerWithExporter(t, exporter)
	token := s.login(t, "admin", "admin", "admin-pass")

	code, body := s.do(t, http.MethodPost, "/api/admin/reports/stock", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["exported"])
	assert.Equal(t, 1, exporter.calls)

	exporter.err = errors.New("sheets down")
	code, body = s.do(t, http.MethodPost, "/api/admin/reports/stock", token, nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.NotEmpty(t, body["error"])
}
