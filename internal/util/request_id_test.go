package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWithRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "missing header", incoming: ""},
		{name: "caller id kept", incoming: "companion-42", keep: true},
		{name: "oversized id replaced", incoming: strings.Repeat("r", maxRequestIDLen+1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var inCtx string
			h := WithRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				inCtx = RequestIDFromRequest(r)
			}))
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			if tc.incoming != "" {
				req.Header.Set("X-Request-Id", tc.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			echoed := rec.Header().Get("X-Request-Id")
			if echoed == "" || echoed != inCtx {
				t.Fatalf("header %q and context %q must match", echoed, inCtx)
			}
			if tc.keep != (echoed == tc.incoming) {
				t.Fatalf("keep=%v but got %q for incoming %q", tc.keep, echoed, tc.incoming)
			}
			if !tc.keep && (len(echoed) != 32 || strings.Contains(echoed, "-")) {
				t.Fatalf("generated id %q is not a dash-free uuid", echoed)
			}
		})
	}
}

func TestRequestIDFromNilRequest(t *testing.T) {
	if got := RequestIDFromRequest(nil); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}
