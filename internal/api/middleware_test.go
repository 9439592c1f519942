package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dominikpree-ux/scolia-180-league/internal/api/auth"
	"github.com/dominikpree-ux/scolia-180-league/internal/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWithRateLimit_ReadsPassThrough(t *testing.T) {
	limiter := ratelimit.New(&ratelimit.Config{WriteCooldown: 0, WriteMaxPerHour: 1, WriteMaxIPPerHour: 1})
	defer limiter.Close()
	handler := WithRateLimit(limiter, false)(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/teams", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %d: status = %d", i, w.Code)
		}
	}
}

func TestWithRateLimit_ThrottlesWrites(t *testing.T) {
	limiter := ratelimit.New(&ratelimit.Config{WriteCooldown: 0, WriteMaxPerHour: 2, WriteMaxIPPerHour: 100})
	defer limiter.Close()
	handler := WithRateLimit(limiter, false)(okHandler())

	post := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/teams", nil)
		r.Header.Set(auth.CaptainEmailHeader, "captain@example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	if w := post(); w.Code != http.StatusOK {
		t.Fatalf("first write: status = %d", w.Code)
	}
	if w := post(); w.Code != http.StatusOK {
		t.Fatalf("second write: status = %d", w.Code)
	}

	w := post()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third write: status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response has no Retry-After header")
	}
}

func TestWithRateLimit_FallsBackToIP(t *testing.T) {
	limiter := ratelimit.New(&ratelimit.Config{WriteCooldown: 0, WriteMaxPerHour: 1, WriteMaxIPPerHour: 100})
	defer limiter.Close()
	handler := WithRateLimit(limiter, false)(okHandler())

	// No captain header: the client IP is the identifier.
	r := httptest.NewRequest(http.MethodPost, "/api/v1/teams", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("first write: status = %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/api/v1/teams", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second write: status = %d, want 429", w.Code)
	}
}

func TestWithRequestID(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value("request_id").(string)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" {
		t.Error("request_id missing from context")
	}
	if got := w.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("X-Request-ID header = %q, context value = %q", got, seen)
	}
}

func TestWithRecovery(t *testing.T) {
	handler := WithRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestChainMiddleware_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := ChainMiddleware(okHandler(), tag("inner"), tag("outer"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order = %v", order)
	}
}
