package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

var errTokenBad = errors.New("bad token")

func init() {
	gin.SetMode(gin.TestMode)
}

func get(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		v, _ := c.Get("requestID")
		seen, _ = v.(string)
		c.Status(http.StatusOK)
	})

	w := get(r, "/", nil)
	rid := w.Header().Get("X-Request-ID")
	if rid == "" || rid != seen {
		t.Fatalf("generated id header=%q ctx=%q", rid, seen)
	}

	// A caller-provided ID is reused verbatim.
	w = get(r, "/", map[string]string{"X-Request-ID": "caller-id-1"})
	if got := w.Header().Get("X-Request-ID"); got != "caller-id-1" {
		t.Fatalf("propagated id = %q; want caller-id-1", got)
	}
}

func TestRecovery_PanicBecomesJSON500(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := get(r, "/boom", map[string]string{"X-Request-ID": "rid-1"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"internal_error"`) || !strings.Contains(body, "rid-1") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestLoggerFrom_FallbackNeverNil(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatal("LoggerFrom must never return nil")
	}
}

func TestAuth_Resolution(t *testing.T) {
	verify := func(token string) (string, error) {
		if token == "good" {
			return "user-from-token", nil
		}
		return "", errTokenBad
	}

	r := gin.New()
	r.Use(Auth(verify))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"bearer token", map[string]string{"Authorization": "Bearer good"}, "user-from-token"},
		{"header fallback", map[string]string{"X-User-ID": "user-7"}, "user-7"},
		{"invalid token falls through", map[string]string{"Authorization": "Bearer bad", "X-User-ID": "user-7"}, "user-7"},
		{"token wins over header", map[string]string{"Authorization": "Bearer good", "X-User-ID": "user-7"}, "user-from-token"},
		{"anonymous", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/", tt.headers)
			if w.Body.String() != tt.want {
				t.Fatalf("identity = %q; want %q", w.Body.String(), tt.want)
			}
		})
	}
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(SecurityOptions{NoStore: true, EnablePolicy: true}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/", nil)

	checks := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Cache-Control":          "no-store",
		"Permissions-Policy":     "geolocation=(), microphone=(), camera=(), payment=()",
	}
	for k, want := range checks {
		if got := w.Header().Get(k); got != want {
			t.Errorf("%s = %q; want %q", k, got, want)
		}
	}
	if hsts := w.Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Fatalf("HSTS emitted without EnableHSTS: %q", hsts)
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Plain HTTP never gets HSTS.
	w := get(r, "/", nil)
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS emitted for plain HTTP")
	}

	// A proxy-terminated HTTPS request does.
	w = get(r, "/", map[string]string{"X-Forwarded-Proto": "https"})
	hsts := w.Header().Get("Strict-Transport-Security")
	if !strings.Contains(hsts, "max-age=3600") {
		t.Fatalf("HSTS = %q; want max-age=3600", hsts)
	}
}

func TestRateLimiter_Enforces(t *testing.T) {
	rl := NewRateLimiter(0, 2, KeyByUserOrIP())
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Burst of 2, zero refill: third request is rejected.
	for i := 0; i < 2; i++ {
		if w := get(r, "/", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d; want 200", i+1, w.Code)
		}
	}
	w := get(r, "/", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d; want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Fatalf("Retry-After = %q; want 1", w.Header().Get("Retry-After"))
	}
	if !strings.Contains(w.Body.String(), `"rate_limited"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(0, 1, KeyByUserOrIP())
	r := gin.New()
	// Identity comes from the auth middleware.
	r.Use(Auth(nil), rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := get(r, "/", map[string]string{"X-User-ID": "user-1"}); w.Code != http.StatusOK {
		t.Fatalf("user-1 first request = %d", w.Code)
	}
	if w := get(r, "/", map[string]string{"X-User-ID": "user-1"}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("user-1 second request = %d; want 429", w.Code)
	}
	// A different identity has its own bucket.
	if w := get(r, "/", map[string]string{"X-User-ID": "user-2"}); w.Code != http.StatusOK {
		t.Fatalf("user-2 first request = %d; want 200", w.Code)
	}
}

func TestKeyByUserOrIP(t *testing.T) {
	fn := KeyByUserOrIP()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if key := fn(c); !strings.HasPrefix(key, "ip:") {
		t.Fatalf("anonymous key = %q; want ip prefix", key)
	}

	c.Set("userID", "abc")
	if key := fn(c); key != "user:abc" {
		t.Fatalf("key = %q; want user:abc", key)
	}
}
