package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetmap-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(verifier *jwt.Verifier) *gin.Engine {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()), LoggingMiddleware(zap.NewNop()))
	r.GET("/fleet", NewAuthMiddleware(verifier).Auth(), func(c *gin.Context) {
		id, _ := GetIdentityID(c)
		c.JSON(http.StatusOK, gin.H{"identity_id": id})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func signedToken(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	claims := jwt.Claims{
		IdentityID:     7,
		SessionPurpose: "access",
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "fleet-app",
			Audience:  gojwt.ClaimStrings{"fleet-users"},
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	w := httptest.NewRecorder()
	protectedRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fleet", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
}

func TestAuthEnabled(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	r := protectedRouter(jwt.NewVerifier(&key.PublicKey, "fleet-app", "fleet-users"))
	token := signedToken(t, key)

	cases := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"missing token", "/fleet", "", http.StatusUnauthorized},
		{"bad token", "/fleet", "Bearer nope", http.StatusUnauthorized},
		{"header token", "/fleet", "Bearer " + token, http.StatusOK},
		{"query token", "/fleet?token=" + token, "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("code = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestLoggingIncludesIdentity(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(LoggingMiddleware(zap.New(core)))
	r.GET("/fleet", NewAuthMiddleware(jwt.NewVerifier(&key.PublicKey, "fleet-app", "fleet-users")).Auth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/fleet", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, key))
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fleet", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	if got, ok := entries[0].ContextMap()["identity_id"]; !ok || got != int64(7) {
		t.Errorf("authenticated request identity_id = %v (present %v), want 7", got, ok)
	}
	if _, ok := entries[1].ContextMap()["identity_id"]; ok {
		t.Error("anonymous request logged an identity_id")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	protectedRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", w.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://fleet.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://fleet.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://fleet.example" {
		t.Errorf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin got header %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight code = %d, want 204", w.Code)
	}
}

func TestOriginAllowed(t *testing.T) {
	cases := []struct {
		allowed []string
		origin  string
		want    bool
	}{
		{[]string{"*"}, "https://any.example", true},
		{[]string{"https://a.example"}, "https://a.example", true},
		{[]string{"https://a.example"}, "https://b.example", false},
		{nil, "", true},
		{nil, "https://a.example", false},
	}
	for _, tc := range cases {
		if got := OriginAllowed(tc.allowed, tc.origin); got != tc.want {
			t.Errorf("OriginAllowed(%v, %q) = %v, want %v", tc.allowed, tc.origin, got, tc.want)
		}
	}
}
