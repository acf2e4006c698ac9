// Package device models the capture hardware the companion screens use.
// Streams are acquired through WithCamera so they are released on every exit
// path.
package device

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"irisguide/pkg/domain"
)

// Frame is one captured image with a short scene description.
type Frame struct {
	Image       []byte
	ContentType string
	Scene       string
	CapturedAt  time.Time
}

// Stream is an open camera.
type Stream interface {
	Capture(ctx context.Context) (Frame, error)
	Close() error
}

// Camera opens streams.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Position is a WGS84 coordinate.
type Position struct {
	Lat float64
	Lon float64
}

// FallbackPosition is shown when no live fix is available.
var FallbackPosition = Position{Lat: 37.7749, Lon: -122.4194}

// Locator reports the current position.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// WithCamera opens cam, runs fn and always closes the stream.
func WithCamera(ctx context.Context, cam Camera, fn func(Stream) error) (err error) {
	if cam == nil {
		return domain.ErrDeviceAccess
	}
	stream, err := cam.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release camera: %w", cerr)
		}
	}()
	return fn(stream)
}

// Locate returns a live fix or FallbackPosition. live is false on fallback.
func Locate(ctx context.Context, loc Locator) (pos Position, live bool, err error) {
	if loc == nil {
		return FallbackPosition, false, domain.ErrDeviceAccess
	}
	pos, err = loc.Locate(ctx)
	if err != nil {
		return FallbackPosition, false, err
	}
	return pos, true, nil
}

// SimCamera is a stand-in camera. Deny simulates a refused permission.
type SimCamera struct {
	Deny  bool
	Scene string

	mu     sync.Mutex
	opened int
	active atomic.Int32
}

// 1x1 transparent PNG.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (c *SimCamera) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Deny {
		return nil, domain.ErrDeviceAccess
	}
	c.mu.Lock()
	c.opened++
	c.mu.Unlock()
	c.active.Add(1)
	return &simStream{cam: c}, nil
}

// Active is the number of streams not yet closed.
func (c *SimCamera) Active() int { return int(c.active.Load()) }

// Opened is the number of streams ever opened.
func (c *SimCamera) Opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

type simStream struct {
	cam    *SimCamera
	closed atomic.Bool
}

func (s *simStream) Capture(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.closed.Load() {
		return Frame{}, fmt.Errorf("capture on closed stream")
	}
	scene := s.cam.Scene
	if scene == "" {
		scene = "Crosswalk ahead, 2 people waiting. Green light for traffic."
	}
	return Frame{
		Image:       append([]byte(nil), placeholderPNG...),
		ContentType: "image/png",
		Scene:       scene,
		CapturedAt:  time.Now().UTC(),
	}, nil
}

func (s *simStream) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.cam.active.Add(-1)
	}
	return nil
}

// SimLocator reports a fixed position. Deny simulates a refused permission.
type SimLocator struct {
	Deny     bool
	Position Position
}

func (l SimLocator) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if l.Deny {
		return Position{}, domain.ErrDeviceAccess
	}
	if l.Position == (Position{}) {
		return FallbackPosition, nil
	}
	return l.Position, nil
}
