package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	handlers "bringalong/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	SetupTripRoutes(v1, handlers.NewTripHandler(nil, nil, nil, nil, nil), "routes-secret")
	SetupAuthRoutes(v1, handlers.NewAuthHandler(nil, nil))
	SetupUserRoutes(v1, handlers.NewUserHandler(nil, nil), "routes-secret")
	SetupCurrencyRoutes(v1, handlers.NewCurrencyHandler(nil, "USD", nil), handlers.NewLocationHandler(nil, nil))
	return r
}

func TestRoutesRegistered(t *testing.T) {
	registered := map[string]bool{}
	for _, route := range newRouter().Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /api/v1/trips",
		"GET /api/v1/trips/search",
		"GET /api/v1/trips/mine",
		"GET /api/v1/trips/:id",
		"POST /api/v1/trips",
		"PATCH /api/v1/trips/:id/status",
		"POST /api/v1/trips/:id/requests",
		"POST /api/v1/auth/login",
		"POST /api/v1/users/me/avatar",
		"GET /api/v1/currency/convert",
		"GET /api/v1/location/detect",
	} {
		if !registered[want] {
			t.Errorf("route %s not registered", want)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newRouter()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/trips/mine"},
		{http.MethodPost, "/api/v1/trips"},
		{http.MethodDelete, "/api/v1/trips/64b7f0c2a1b2c3d4e5f60718"},
		{http.MethodGet, "/api/v1/trips/64b7f0c2a1b2c3d4e5f60718/requests"},
		{http.MethodGet, "/api/v1/users/me"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tc.method, tc.path, w.Code)
		}
	}
}
