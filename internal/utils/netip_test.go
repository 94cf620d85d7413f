package utils

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "198.51.100.4:1234", want: "198.51.100.4"},
		{name: "headers ignored without trust", remote: "127.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "203.0.113.9"}, want: "127.0.0.1"},
		{name: "cloudflare first", remote: "127.0.0.1:1", trustProxy: true, headers: map[string]string{
			"CF-Connecting-IP": "203.0.113.1", "X-Forwarded-For": "203.0.113.2",
		}, want: "203.0.113.1"},
		{name: "left-most forwarded", remote: "127.0.0.1:1", trustProxy: true, headers: map[string]string{
			"X-Forwarded-For": " 203.0.113.2 , 10.0.0.1",
		}, want: "203.0.113.2"},
		{name: "real ip", remote: "127.0.0.1:1", trustProxy: true, headers: map[string]string{"X-Real-IP": "[2001:db8::1]:443"}, want: "2001:db8::1"},
		{name: "fallback", remote: "[2001:db8::2]:80", trustProxy: true, want: "2001:db8::2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.0.2.7 ", "2001:db8::/32", "not-an-ip", ""})
	if m.IsEmpty() {
		t.Fatal("matcher should not be empty")
	}

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.20.30.40", true},
		{"192.0.2.7", true},
		{"::ffff:192.0.2.7", true},
		{"192.0.2.8", false},
		{"2001:db8:1::1", true},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("nil list should give an empty matcher")
	}
}
