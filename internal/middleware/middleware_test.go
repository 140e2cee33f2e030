package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bringalong/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const secret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, userID.Hex())
	})
	return r
}

func doRequest(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	userID := primitive.NewObjectID()
	tokens, err := utils.GenerateTokenPair(userID, "ada@example.com", secret, utils.TokenTTL{Access: time.Minute, Refresh: time.Hour})
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}
	r := newAuthRouter(AuthRequired(secret))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + tokens.AccessToken, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"refresh token", "Bearer " + tokens.RefreshToken, http.StatusUnauthorized},
		{"access token", "Bearer " + tokens.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, tt.header)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusOK && w.Body.String() != userID.Hex() {
				t.Errorf("user id = %q, want %q", w.Body.String(), userID.Hex())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	userID := primitive.NewObjectID()
	tokens, err := utils.GenerateTokenPair(userID, "ada@example.com", secret, utils.TokenTTL{})
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}
	r := newAuthRouter(OptionalAuth(secret))

	if w := doRequest(r, ""); w.Code != http.StatusOK || w.Body.String() != "anonymous" {
		t.Errorf("anonymous request: %d %q", w.Code, w.Body.String())
	}
	if w := doRequest(r, "Bearer broken"); w.Body.String() != "anonymous" {
		t.Errorf("invalid token should be ignored, got %q", w.Body.String())
	}
	if w := doRequest(r, "Bearer "+tokens.AccessToken); w.Body.String() != userID.Hex() {
		t.Errorf("valid token: got %q", w.Body.String())
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin was allowed: %q", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(utils.ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Body.String() == "" || w.Header().Get("X-Request-ID") != w.Body.String() {
		t.Errorf("generated id %q not echoed in header %q", w.Body.String(), w.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" {
		t.Errorf("incoming id not kept, got %q", w.Body.String())
	}
}
