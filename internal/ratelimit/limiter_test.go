package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckWrite_Cooldown(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		WriteCooldown:     60 * time.Second,
		WriteMaxPerHour:   5,
		WriteMaxIPPerHour: 20,
		Clock:             clock,
	})
	defer limiter.Close()

	identifier := "captain@example.com"
	ip := "192.168.1.1"

	// First request should be allowed
	result := limiter.CheckWrite(identifier, ip)
	if !result.Allowed {
		t.Errorf("First request should be allowed, got blocked: %s", result.Reason)
	}
	limiter.RecordWrite(identifier, ip)

	// Second request within cooldown should be blocked
	clock.Advance(30 * time.Second)
	result = limiter.CheckWrite(identifier, ip)
	if result.Allowed {
		t.Error("Second request within cooldown should be blocked")
	}
	if result.Reason != "cooldown" {
		t.Errorf("Expected reason 'cooldown', got '%s'", result.Reason)
	}
	if result.RetryAfter != 30*time.Second {
		t.Errorf("Expected RetryAfter 30s, got %v", result.RetryAfter)
	}

	// After cooldown expires, should be allowed
	clock.Advance(31 * time.Second)
	result = limiter.CheckWrite(identifier, ip)
	if !result.Allowed {
		t.Errorf("Request after cooldown should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckWrite_HourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		WriteCooldown:     1 * time.Millisecond,
		WriteMaxPerHour:   3,
		WriteMaxIPPerHour: 20,
		Clock:             clock,
	})
	defer limiter.Close()

	identifier := "hourly@example.com"
	ip := "192.168.1.2"

	// First 3 requests should be allowed
	for i := 0; i < 3; i++ {
		clock.Advance(1 * time.Second)
		result := limiter.CheckWrite(identifier, ip)
		if !result.Allowed {
			t.Errorf("Request %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordWrite(identifier, ip)
	}

	// 4th request should be blocked (hourly limit)
	clock.Advance(1 * time.Second)
	result := limiter.CheckWrite(identifier, ip)
	if result.Allowed {
		t.Error("4th request should be blocked (hourly limit)")
	}
	if result.Reason != "hourly_limit" {
		t.Errorf("Expected reason 'hourly_limit', got '%s'", result.Reason)
	}

	// After hour passes, should be allowed again
	clock.Advance(1 * time.Hour)
	result = limiter.CheckWrite(identifier, ip)
	if !result.Allowed {
		t.Errorf("Request after hour should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckWrite_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		WriteCooldown:     1 * time.Millisecond,
		WriteMaxPerHour:   100,
		WriteMaxIPPerHour: 2,
		Clock:             clock,
	})
	defer limiter.Close()

	ip := "192.168.1.3"

	// First 2 requests from different identifiers should be allowed
	for i := 0; i < 2; i++ {
		identifier := "user" + string(rune('a'+i)) + "@example.com"
		clock.Advance(1 * time.Second)
		result := limiter.CheckWrite(identifier, ip)
		if !result.Allowed {
			t.Errorf("Request %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordWrite(identifier, ip)
	}

	// 3rd request from same IP should be blocked
	clock.Advance(1 * time.Second)
	result := limiter.CheckWrite("userc@example.com", ip)
	if result.Allowed {
		t.Error("3rd request from same IP should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Errorf("Expected reason 'ip_hourly_limit', got '%s'", result.Reason)
	}
}

func TestCheckWrite_IdentifierNormalization(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		WriteCooldown:     60 * time.Second,
		WriteMaxPerHour:   5,
		WriteMaxIPPerHour: 20,
		Clock:             clock,
	})
	defer limiter.Close()

	ip := "192.168.1.1"

	// First request with lowercase
	result := limiter.CheckWrite("captain@example.com", ip)
	if !result.Allowed {
		t.Error("First request should be allowed")
	}
	limiter.RecordWrite("captain@example.com", ip)

	// Second request with UPPERCASE should be blocked (same identifier)
	result = limiter.CheckWrite("CAPTAIN@EXAMPLE.COM", ip)
	if result.Allowed {
		t.Error("Request with different case should be blocked (same identifier)")
	}
	if result.Reason != "cooldown" {
		t.Errorf("Expected reason 'cooldown', got '%s'", result.Reason)
	}

	// Mixed case should also be blocked
	result = limiter.CheckWrite("Captain@Example.Com", ip)
	if result.Allowed {
		t.Error("Request with mixed case should be blocked")
	}
}

func TestGetClientIP_TrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "TrustProxy=true, XFF rightmost public IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50", // Rightmost non-private
		},
		{
			name:       "TrustProxy=true, XFF all private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1", // Last one when all private
		},
		{
			name:       "TrustProxy=true, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "TrustProxy=false, ignores XFF",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100", // Uses RemoteAddr, ignores spoofed XFF
		},
		{
			name:       "No headers, RemoteAddr only",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: true,
			expected:   "192.168.1.100",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got := GetClientIP(r, tt.trustProxy)
			if got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"jana.weber@example.com", "ja***@example.com"},
		{"JANA.WEBER@EXAMPLE.COM", "ja***@example.com"}, // Normalized to lowercase
		{"ab@example.com", "***@example.com"},
		{"+4915112345678", "***5678"},
		{"123", "***"},
		{"", "***"},
		{"  Captain@Example.Com  ", "ca***@example.com"}, // Trimmed and lowercased
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeIdentifier(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	limiter := New(nil)
	defer limiter.Close()

	if limiter.config.WriteCooldown != 2*time.Second {
		t.Error("New(nil) should use default config")
	}
}

func TestLimiter_Close(t *testing.T) {
	limiter := New(nil)

	// Trigger cleanup goroutine
	limiter.CheckWrite("captain@example.com", "1.2.3.4")

	// Close should not hang
	done := make(chan struct{})
	go func() {
		limiter.Close()
		close(done)
	}()

	select {
	case <-done:
		// Success
	case <-time.After(1 * time.Second):
		t.Error("Close() should not hang")
	}
}

func TestConcurrentAccess(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		WriteCooldown:     1 * time.Millisecond,
		WriteMaxPerHour:   1000,
		WriteMaxIPPerHour: 1000,
		Clock:             clock,
	})
	defer limiter.Close()

	var wg sync.WaitGroup
	numGoroutines := 100
	numOps := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			identifier := "captain@example.com"
			ip := "192.168.1.1"
			for j := 0; j < numOps; j++ {
				result := limiter.CheckWrite(identifier, ip)
				if result.Allowed {
					limiter.RecordWrite(identifier, ip)
				}
			}
		}()
	}

	wg.Wait()
	// If we get here without race detector complaints, test passes
}

func TestCheckAndRecord_SeparateOps(t *testing.T) {
	// Verify that Check doesn't consume quota - only Record does
	clock := newMockClock()
	limiter := New(&Config{
		WriteCooldown:     60 * time.Second,
		WriteMaxPerHour:   1,
		WriteMaxIPPerHour: 100,
		Clock:             clock,
	})
	defer limiter.Close()

	identifier := "captain@example.com"
	ip := "192.168.1.1"

	// Multiple checks should all be allowed (no recording)
	for i := 0; i < 10; i++ {
		result := limiter.CheckWrite(identifier, ip)
		if !result.Allowed {
			t.Errorf("Check %d should be allowed without prior Record", i+1)
		}
	}

	// Now record once
	limiter.RecordWrite(identifier, ip)

	// Next check should be blocked (cooldown)
	result := limiter.CheckWrite(identifier, ip)
	if result.Allowed {
		t.Error("Check after Record should be blocked")
	}
}
