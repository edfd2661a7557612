package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/trip-ledger/internal/auth"
	"github.com/ukydev/trip-ledger/internal/cache"
	"github.com/ukydev/trip-ledger/internal/handlers"
	"github.com/ukydev/trip-ledger/internal/ledger"
	"github.com/ukydev/trip-ledger/internal/middleware"
	"github.com/ukydev/trip-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newTestServer builds the router without storage. Only requests rejected
// before reaching a handler are exercised.
func newTestServer(t *testing.T) (*server, *auth.Service) {
	t.Helper()
	authService, err := auth.NewService("router-secret", time.Hour)
	require.NoError(t, err)
	summaries := cache.NewSummaryCache(nil, 0)
	return &server{
		auth:     handlers.NewAuthHandler(authService, nil),
		vehicles: handlers.NewVehicleHandler(nil, nil, summaries),
		trips:    handlers.NewTripHandler(nil, nil, nil, summaries),
		ledger:   handlers.NewLedgerHandler(handlers.LedgerDeps{Cache: summaries, Policy: ledger.DefaultPolicy()}),
		receipts: handlers.NewReceiptHandler(nil, nil, summaries, nil),
		authMW:   middleware.NewAuthMiddleware(authService),
		limiter:  middleware.NewRateLimitMiddleware(),
	}, authService
}

func TestHealthHandler(t *testing.T) {
	s, _ := newTestServer(t)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	healthHandler(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRoutes_RequireToken(t *testing.T) {
	s, _ := newTestServer(t)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vehicles/veh-1/summary", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_Permissions(t *testing.T) {
	s, authService := newTestServer(t)
	token, err := authService.GenerateToken(&models.Operator{
		ID:       primitive.NewObjectID(),
		Username: "viewer",
		Role:     models.RoleViewer,
		IsActive: true,
	})
	require.NoError(t, err)

	cases := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/receipts/r1/assign"},
		{http.MethodPut, "/api/vehicles/veh-1"},
		{http.MethodGet, "/api/receipts/r1/candidates"},
		{http.MethodDelete, "/api/vehicles/veh-1"},
		{http.MethodPost, "/api/vehicles/veh-1/trips"},
		{http.MethodPut, "/api/vehicles/veh-1/trips/t1"},
		{http.MethodDelete, "/api/vehicles/veh-1/trips/t1"},
		{http.MethodPut, "/api/vehicles/veh-1/trips/t1/order"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.routes().ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, tc.path)
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	s, authService := newTestServer(t)
	token, err := authService.GenerateToken(&models.Operator{
		ID:       primitive.NewObjectID(),
		Username: "owner",
		Role:     models.RoleOwner,
		IsActive: true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/vehicles/veh-1/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
