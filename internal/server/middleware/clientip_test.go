package middleware

import (
	"net/http/httptest"
	"testing"
)

func TestRequestIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "192.168.1.1"}, "", "192.168.1.1"},
		{"x-forwarded-for with comma", map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"}, "", "192.168.1.1"},
		{"x-real-ip", map[string]string{"X-Real-IP": "192.168.1.2"}, "", "192.168.1.2"},
		{"x-forwarded-for precedence", map[string]string{"X-Forwarded-For": "192.168.1.1", "X-Real-IP": "192.168.1.2"}, "", "192.168.1.1"},
		{"whitespace", map[string]string{"X-Forwarded-For": "  192.168.1.1  "}, "", "192.168.1.1"},
		{"remote addr", nil, "192.168.1.3:12345", "192.168.1.3"},
		{"unknown", nil, "", "unknown"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			if got := RequestIP(r); got != tc.want {
				t.Errorf("ip = %q, want %q", got, tc.want)
			}
		})
	}
}
