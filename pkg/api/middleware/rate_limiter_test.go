package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hit(t *testing.T, e *echo.Echo, handler echo.HandlerFunc, ip string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	return rec.Code
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(60, 3)
	handler := rl.RateLimitMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(t, e, handler, "10.0.0.1"))
	}
}

func TestRateLimiter_BlocksBeyondBurst(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 1)
	handler := rl.RateLimitMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, hit(t, e, handler, "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, hit(t, e, handler, "10.0.0.2"))
}

func TestRateLimiter_PerIP(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 1)
	handler := rl.RateLimitMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, hit(t, e, handler, "10.0.0.3"))
	assert.Equal(t, http.StatusTooManyRequests, hit(t, e, handler, "10.0.0.3"))
	// A different client is unaffected.
	assert.Equal(t, http.StatusOK, hit(t, e, handler, "10.0.0.4"))
}
