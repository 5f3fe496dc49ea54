package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		if code := send("1.2.3.4"); code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, code)
		}
	}
	if code := send("1.2.3.4"); code != http.StatusTooManyRequests {
		t.Errorf("over-limit request: status %d", code)
	}

	// Other clients are unaffected.
	if code := send("5.6.7.8"); code != http.StatusOK {
		t.Errorf("separate client limited: status %d", code)
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() int {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = "1.2.3.4"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if send() != http.StatusOK {
		t.Fatal("first request limited")
	}
	if send() != http.StatusTooManyRequests {
		t.Fatal("second request not limited")
	}
	time.Sleep(30 * time.Millisecond)
	if send() != http.StatusOK {
		t.Error("window did not reset")
	}
}
