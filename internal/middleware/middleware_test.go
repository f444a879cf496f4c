package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
	"github.com/iliyamo/safari-backoffice/internal/config"
	"github.com/iliyamo/safari-backoffice/internal/utils"
)

const secret = "test-secret"

// newEcho renders AppErrors the way the API does.
func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		status, body := apperror.Public(err)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status, body = he.Code, map[string]any{"error": he.Message}
		}
		_ = c.JSON(status, body)
	}
	return e
}

func whoami(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id"), "role": c.Get("role")})
}

func get(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := newEcho()
	e.GET("/me", whoami, JWTAuth(secret), RequireRole("OPERATOR"))

	tok, err := utils.NewAccessToken(secret, 7, "OPERATOR", 5)
	require.NoError(t, err)
	rec := get(e, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"OPERATOR"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(e, "Token "+tok.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, get(e, "Bearer not-a-jwt").Code)

	other, err := utils.NewAccessToken("other-secret", 7, "OPERATOR", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(e, "Bearer "+other.Token).Code)
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	e := newEcho()
	e.GET("/me", whoami, JWTAuth(secret), RequireRole("OPERATOR"))

	tok, err := utils.NewAccessToken(secret, 7, "CUSTOMER", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(e, "Bearer "+tok.Token).Code)
}

func TestActorID(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", actorID(c))
	c.Set("user_id", uint64(7))
	assert.Equal(t, "7", actorID(c))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/payments", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/payments")
	c.Set("user_id", uint64(7))

	cfg := config.RateLimitConfig{Prefix: "backoffice:rl", KeyStrategy: "user_route"}
	assert.Equal(t, "backoffice:rl:user:7:route:POST /api/payments", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "backoffice:rl:ip:10.0.0.1", buildRateKey(cfg, c))

	cfg.KeyStrategy = ""
	assert.Equal(t, "backoffice:rl:ip:10.0.0.1:user:7:route:POST /api/payments", buildRateKey(cfg, c))
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	e := newEcho()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, zap.NewNop())
	e.GET("/me", whoami, mw)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(e, "").Code)
	}
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(4), asInt64("4"))
	assert.Equal(t, int64(5), asInt64(5.0))
	assert.Zero(t, asInt64(nil))
}

func TestRequestLoggerWritesOneLine(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := newEcho()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: func() string { return "req-1" }}))
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/me", whoami, JWTAuth(secret))

	rec := get(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, int64(http.StatusUnauthorized), fields["status"])
	assert.Equal(t, "/me", fields["path"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "anon", fields["actor"])
	assert.IsType(t, time.Duration(0), fields["latency"])
}
