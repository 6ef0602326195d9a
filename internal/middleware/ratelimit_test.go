package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courtsec/courtsec/internal/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func newTestLimiter(rate, burst int, clock *fakeClock) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(rate),
		burst:   float64(burst),
		now:     clock.now,
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		burst    int
		requests int
		wait     time.Duration
		want     []bool
	}{
		{name: "burst admitted", rate: 1, burst: 3, requests: 3, want: []bool{true, true, true}},
		{name: "beyond burst rejected", rate: 1, burst: 2, requests: 3, want: []bool{true, true, false}},
		{name: "refill between requests", rate: 2, burst: 1, requests: 3, wait: 500 * time.Millisecond, want: []bool{true, true, true}},
		{name: "partial refill is not enough", rate: 1, burst: 1, requests: 2, wait: 400 * time.Millisecond, want: []bool{true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newClock()
			rl := newTestLimiter(tt.rate, tt.burst, clock)

			for i := range tt.requests {
				allowed, tracked := rl.allow("10.0.0.1")
				if !tracked {
					t.Fatalf("request %d: client not tracked", i)
				}

				if allowed != tt.want[i] {
					t.Errorf("request %d: allowed = %v, want %v", i, allowed, tt.want[i])
				}

				clock.advance(tt.wait)
			}
		})
	}
}

func TestRateLimiter_RefillCapsAtBurst(t *testing.T) {
	clock := newClock()
	rl := newTestLimiter(100, 2, clock)

	rl.allow("10.0.0.1")
	clock.advance(time.Hour)

	for i := range 2 {
		if allowed, _ := rl.allow("10.0.0.1"); !allowed {
			t.Fatalf("request %d rejected after idle period", i)
		}
	}

	if allowed, _ := rl.allow("10.0.0.1"); allowed {
		t.Error("idle period refilled beyond burst")
	}
}

func TestRateLimiter_ClientsHaveSeparateBuckets(t *testing.T) {
	rl := newTestLimiter(1, 1, newClock())

	if allowed, _ := rl.allow("10.0.0.1"); !allowed {
		t.Fatal("first client rejected")
	}

	if allowed, _ := rl.allow("10.0.0.1"); allowed {
		t.Fatal("first client should be exhausted")
	}

	if allowed, _ := rl.allow("10.0.0.2"); !allowed {
		t.Error("second client rejected by first client's bucket")
	}
}

func TestRateLimiter_FullTableRejectsNewClients(t *testing.T) {
	rl := newTestLimiter(1, 1, newClock())
	for i := range maxBuckets {
		rl.buckets[strconv.Itoa(i)] = &bucket{tokens: 1, lastFill: rl.now()}
	}

	allowed, tracked := rl.allow("10.0.0.1")
	if allowed || tracked {
		t.Errorf("allow on full table = (%v, %v), want (false, false)", allowed, tracked)
	}
}

func TestRateLimiter_HandlerEnvelope(t *testing.T) {
	rl := newTestLimiter(1, 1, newClock())

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(RequestIDKey, "rid-42") })
	r.Use(rl.Handler())
	r.GET("/api/v1/incidents", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents", http.NoBody)
		req.RemoteAddr = "192.0.2.7:5000"
		r.ServeHTTP(w, req)

		return w
	}

	if w := send(); w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}

	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}

	var body httputil.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.Code != "rate_limited" || body.RequestID != "rid-42" {
		t.Errorf("unexpected body %+v", body)
	}
}
