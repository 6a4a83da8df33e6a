package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r *gin.Engine, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitPerClient(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2, Now: clock.Now}))

	assert.Equal(t, http.StatusOK, get(r, "192.0.2.1:1000"))
	assert.Equal(t, http.StatusOK, get(r, "192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, get(r, "192.0.2.1:1000"))

	// another client has its own budget
	assert.Equal(t, http.StatusOK, get(r, "192.0.2.2:1000"))

	clock.Advance(time.Second)
	assert.Equal(t, http.StatusOK, get(r, "192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, get(r, "192.0.2.1:1000"))
}

func TestRateLimitForgetsIdleClients(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	set := newLimiterSet(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute, Now: clock.Now})
	r := newRouter(rateLimit(set))

	get(r, "192.0.2.1:1000")
	get(r, "192.0.2.2:1000")
	assert.Equal(t, 2, set.len())

	clock.Advance(2 * time.Minute)
	get(r, "192.0.2.3:1000")
	assert.Equal(t, 1, set.len())
}

func TestGlobalRateLimit(t *testing.T) {
	r := newRouter(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))

	assert.Equal(t, http.StatusOK, get(r, "192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, get(r, "192.0.2.2:1000"))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig()))
	r.POST("/fill", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/fill", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogAssignsID(t *testing.T) {
	r := newRouter(RequestLog(nil))
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	assigned := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, assigned)
	assert.Equal(t, assigned, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "driver-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "driver-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "driver-42", w.Body.String())
}
