package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetector_ExtractClientIP(t *testing.T) {
	d, err := NewDetector("203.0.113.7")
	if err != nil {
		t.Fatalf("NewDetector() error = %v", err)
	}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct client", "198.51.100.4:5555", "", "", "198.51.100.4"},
		{"untrusted peer cannot spoof", "198.51.100.4:5555", "1.2.3.4", "", "198.51.100.4"},
		{"trusted private proxy", "10.0.0.2:80", "1.2.3.4, 10.0.0.2", "", "1.2.3.4"},
		{"configured proxy", "203.0.113.7:443", "5.6.7.8", "", "5.6.7.8"},
		{"real ip fallback", "127.0.0.1:80", "", "9.9.9.9", "9.9.9.9"},
		{"garbage forwarded header", "127.0.0.1:80", "not-an-ip", "", "127.0.0.1"},
		{"no port", "198.51.100.4", "", "", "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewDetector_InvalidProxy(t *testing.T) {
	if _, err := NewDetector("not-a-network"); err == nil {
		t.Error("expected error for invalid proxy")
	}
	if _, err := NewDetector("10.1.0.0/99"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}

func TestDetector_DetectSuspiciousRequest(t *testing.T) {
	d, _ := NewDetector()

	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"normal api call", http.MethodGet, "/api/v1/expense/get?page=2", "Mozilla/5.0", false},
		{"script client", http.MethodPost, "/api/v1/income/add", "curl/8.0", false},
		{"path traversal", http.MethodGet, "/api/../../etc/passwd", "", true},
		{"dotenv probe", http.MethodGet, "/.env", "", true},
		{"sql injection in query", http.MethodGet, "/api/v1/expense/get?category=x'%20union%20select", "", true},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := d.GetMetrics().SuspiciousRequests; got != 5 {
		t.Errorf("SuspiciousRequests = %d, want 5", got)
	}
}

func TestDetector_MiddlewarePassesThrough(t *testing.T) {
	d, _ := NewDetector()
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/.git/config", nil))
	if !called {
		t.Error("suspicious requests are logged, not blocked")
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	for key, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Cache-Control":           "no-store",
	} {
		if got := rec.Header().Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.TLS = &tls.ConnectionState{}
	h.ServeHTTP(rec, r)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("Strict-Transport-Security = %q", got)
	}
}
