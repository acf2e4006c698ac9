package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"irisguide/services/companion/internal/device"
)

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" || r.URL.Query().Get("format") != "jsonv2" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("lat") {
		case "1":
			_, _ = w.Write([]byte(`{"address":{"road":"Main St","town":"Springfield"}}`))
		case "2":
			_, _ = w.Write([]byte(`{"address":{"state":"Nevada"}}`))
		case "3":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	n := NewNominatim(srv.URL, "")
	ctx := context.Background()

	tests := []struct {
		lat  float64
		want Address
	}{
		{1, Address{Street: "Main St", City: "Springfield"}},
		{2, Address{Street: FallbackStreet, City: "Nevada"}},
		{3, Fallback},
	}
	for _, tc := range tests {
		got, err := n.Reverse(ctx, device.Position{Lat: tc.lat, Lon: 0})
		if err != nil || got != tc.want {
			t.Fatalf("lat %v: got %+v err=%v", tc.lat, got, err)
		}
	}

	if _, err := n.Reverse(ctx, device.Position{Lat: 9}); err == nil {
		t.Fatalf("expected error on 500")
	}
	if got := Resolve(ctx, n, device.Position{Lat: 9}); got != Fallback {
		t.Fatalf("resolve fallback: %+v", got)
	}
}
