package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	proxies, err := NewTrustedProxies([]string{"172.16.0.0/12", " 127.0.0.1 ", "fd00::/8"})
	if err != nil {
		t.Fatalf("trusted proxies: %v", err)
	}

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		trusted *TrustedProxies
		want    string
	}{
		{
			name:    "untrusted peer keeps its own address",
			remote:  "203.0.113.40:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.1"},
			trusted: proxies,
			want:    "203.0.113.40",
		},
		{
			name:    "nil set ignores headers",
			remote:  "172.16.5.5:80",
			headers: map[string]string{"X-Real-IP": "198.51.100.2"},
			want:    "172.16.5.5",
		},
		{
			name:    "skips trusted hops from the right",
			remote:  "127.0.0.1:9000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.3, 172.20.1.1"},
			trusted: proxies,
			want:    "198.51.100.3",
		},
		{
			name:    "ipv6 peer behind proxy",
			remote:  "[fd00::1]:443",
			headers: map[string]string{"X-Forwarded-For": "2001:db8::7"},
			trusted: proxies,
			want:    "2001:db8::7",
		},
		{
			name:    "real ip when forwarded-for is garbage",
			remote:  "172.16.0.9:80",
			headers: map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "198.51.100.4"},
			trusted: proxies,
			want:    "198.51.100.4",
		},
		{
			name:   "unparseable remote returned verbatim",
			remote: "pipe",
			want:   "pipe",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req, tc.trusted); got != tc.want {
				t.Fatalf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewTrustedProxiesRejectsGarbage(t *testing.T) {
	if set, err := NewTrustedProxies([]string{"", "  "}); err != nil || set != nil {
		t.Fatalf("blank entries should yield nil set, got %v %v", set, err)
	}
	if _, err := NewTrustedProxies([]string{"10.0.0.0/33"}); err == nil {
		t.Fatalf("expected invalid prefix to fail")
	}
}
