package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(rate int, interval time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(rate, interval)
	r.GET("/ping", rl.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func hit(r *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	r := newLimitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if code := hit(r, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, code)
		}
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("over-budget request: status %d, want 429", code)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	r := newLimitedRouter(1, time.Minute)

	if code := hit(r, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first client: status %d, want 200", code)
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("first client second hit: status %d, want 429", code)
	}
	if code := hit(r, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("second client must have its own budget: status %d, want 200", code)
	}
}

func TestRateLimiterRefills(t *testing.T) {
	r := newLimitedRouter(1, 20*time.Millisecond)

	if code := hit(r, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("status %d, want 200", code)
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", code)
	}

	time.Sleep(30 * time.Millisecond)
	if code := hit(r, "10.0.0.1"); code != http.StatusOK {
		t.Errorf("after refill interval: status %d, want 200", code)
	}
}
