// Package alerts carries SOS alerts from an impaired user to the guides
// paired to the same device.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"irisguide/pkg/domain"
)

// DefaultMessage is used when an SOS carries no text.
const DefaultMessage = "Emergency assistance requested"

// Feed publishes alerts and lists them newest first per device.
type Feed interface {
	Publish(ctx context.Context, alert domain.Alert) (domain.Alert, error)
	Recent(ctx context.Context, deviceID string, limit int) ([]domain.Alert, error)
}

func prepare(alert domain.Alert) (domain.Alert, error) {
	alert.DeviceID = strings.TrimSpace(alert.DeviceID)
	if alert.DeviceID == "" {
		return domain.Alert{}, errors.New("alert deviceId required")
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.Kind == "" {
		alert.Kind = domain.AlertSOS
	}
	if strings.TrimSpace(alert.Message) == "" {
		alert.Message = DefaultMessage
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	return alert, nil
}

// RedisFeed stores alerts in one capped Redis stream per device.
type RedisFeed struct {
	client redis.UniversalClient
	prefix string
	maxLen int64
}

// NewRedisFeed builds a feed on a shared client. maxLen caps each device stream.
func NewRedisFeed(client redis.UniversalClient, prefix string, maxLen int64) (*RedisFeed, error) {
	if client == nil {
		return nil, errors.New("alert feed redis client is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "iris:alerts"
	}
	if maxLen <= 0 {
		maxLen = 1000
	}
	return &RedisFeed{client: client, prefix: prefix, maxLen: maxLen}, nil
}

func (f *RedisFeed) stream(deviceID string) string {
	return f.prefix + ":" + deviceID
}

func (f *RedisFeed) Publish(ctx context.Context, alert domain.Alert) (domain.Alert, error) {
	alert, err := prepare(alert)
	if err != nil {
		return domain.Alert{}, err
	}
	if err := f.client.XAdd(ctx, &redis.XAddArgs{
		Stream: f.stream(alert.DeviceID),
		MaxLen: f.maxLen,
		Approx: true,
		Values: map[string]any{
			"alert_id":   alert.ID,
			"user_id":    alert.UserID,
			"kind":       string(alert.Kind),
			"message":    alert.Message,
			"created_at": alert.CreatedAt.Format(time.RFC3339Nano),
		},
	}).Err(); err != nil {
		return domain.Alert{}, fmt.Errorf("publish alert: %w", err)
	}
	return alert, nil
}

func (f *RedisFeed) Recent(ctx context.Context, deviceID string, limit int) ([]domain.Alert, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	msgs, err := f.client.XRevRangeN(ctx, f.stream(deviceID), "+", "-", int64(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("read alerts: %w", err)
	}
	out := make([]domain.Alert, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, decodeAlert(deviceID, msg.Values))
	}
	return out, nil
}

func decodeAlert(deviceID string, values map[string]any) domain.Alert {
	str := func(k string) string {
		v, _ := values[k].(string)
		return v
	}
	created, _ := time.Parse(time.RFC3339Nano, str("created_at"))
	return domain.Alert{
		ID:        str("alert_id"),
		UserID:    str("user_id"),
		DeviceID:  deviceID,
		Kind:      domain.AlertKind(str("kind")),
		Message:   str("message"),
		CreatedAt: created,
	}
}

// MemoryFeed keeps alerts in-process.
type MemoryFeed struct {
	mu     sync.Mutex
	byDev  map[string][]domain.Alert
	maxLen int
}

// NewMemoryFeed returns an empty MemoryFeed keeping at most maxLen alerts per device.
func NewMemoryFeed(maxLen int) *MemoryFeed {
	if maxLen <= 0 {
		maxLen = 1000
	}
	return &MemoryFeed{byDev: make(map[string][]domain.Alert), maxLen: maxLen}
}

func (f *MemoryFeed) Publish(_ context.Context, alert domain.Alert) (domain.Alert, error) {
	alert, err := prepare(alert)
	if err != nil {
		return domain.Alert{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := append(f.byDev[alert.DeviceID], alert)
	if len(list) > f.maxLen {
		list = list[len(list)-f.maxLen:]
	}
	f.byDev[alert.DeviceID] = list
	return alert, nil
}

func (f *MemoryFeed) Recent(_ context.Context, deviceID string, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = 20
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.byDev[strings.TrimSpace(deviceID)]
	out := make([]domain.Alert, 0, min(limit, len(list)))
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}
