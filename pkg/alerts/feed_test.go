package alerts

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"irisguide/pkg/domain"
)

func newRedisFeed(t *testing.T) *RedisFeed {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	feed, err := NewRedisFeed(client, "test:alerts", 100)
	if err != nil {
		t.Fatalf("new feed: %v", err)
	}
	return feed
}

func TestFeedsNewestFirstPerDevice(t *testing.T) {
	feeds := map[string]Feed{
		"redis":  newRedisFeed(t),
		"memory": NewMemoryFeed(100),
	}
	for name, feed := range feeds {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, a := range []domain.Alert{
				{UserID: "u1", DeviceID: "D1", Message: "first"},
				{UserID: "u1", DeviceID: "D1"},
				{UserID: "u9", DeviceID: "D2", Message: "other device"},
			} {
				if _, err := feed.Publish(ctx, a); err != nil {
					t.Fatalf("publish: %v", err)
				}
			}
			got, err := feed.Recent(ctx, "D1", 10)
			if err != nil {
				t.Fatalf("recent: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 alerts for D1, got %d", len(got))
			}
			if got[0].Message != DefaultMessage || got[1].Message != "first" {
				t.Fatalf("unexpected order: %+v", got)
			}
			if got[0].Kind != domain.AlertSOS || got[0].ID == "" || got[0].CreatedAt.IsZero() {
				t.Fatalf("alert not filled: %+v", got[0])
			}
			if limited, _ := feed.Recent(ctx, "D1", 1); len(limited) != 1 {
				t.Fatalf("limit not applied: %d", len(limited))
			}
			if none, _ := feed.Recent(ctx, "D3", 10); len(none) != 0 {
				t.Fatalf("expected no alerts for D3, got %+v", none)
			}
		})
	}
}

func TestFeedRequiresDevice(t *testing.T) {
	if _, err := NewMemoryFeed(1).Publish(context.Background(), domain.Alert{UserID: "u1"}); err == nil {
		t.Fatalf("expected error without deviceId")
	}
}
