package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecodeDataURL(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	img, err := DecodeDataURL("data:image/png;base64," + base64.StdEncoding.EncodeToString(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.ContentType != "image/png" || !bytes.Equal(img.Data, payload) {
		t.Fatalf("unexpected image: %+v", img)
	}

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"plain url", "https://example.com/a.jpg", ErrNotDataURL},
		{"unsupported type", "data:text/plain;base64,aGk=", ErrUnsupportedType},
		{"missing comma", "data:image/png;base64", ErrNotDataURL},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeDataURL(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if _, err := DecodeDataURL("data:image/png,rawbytes"); err == nil {
		t.Fatalf("expected non-base64 data url to fail")
	}
}

func TestReferenceRoundTrip(t *testing.T) {
	key := FaceImageKey("u1", "f1", "image/jpeg")
	if key != "faces/u1/f1.jpg" {
		t.Fatalf("key = %q", key)
	}
	ref := Reference("iris-faces", key)
	bucket, gotKey, ok := ParseReference(ref)
	if !ok || bucket != "iris-faces" || gotKey != key {
		t.Fatalf("parse %q: bucket=%q key=%q ok=%v", ref, bucket, gotKey, ok)
	}
	if _, _, ok := ParseReference("https://example.com/x.jpg"); ok {
		t.Fatalf("expected https url to be rejected")
	}
}

func TestMemoryStorePresign(t *testing.T) {
	s := NewMemoryStore("iris-faces")
	ctx := context.Background()
	if _, err := s.PresignGet(ctx, "faces/u1/f1.png", time.Minute); err == nil {
		t.Fatalf("expected presign of missing object to fail")
	}
	if err := s.Put(ctx, "faces/u1/f1.png", strings.NewReader("img"), 3, "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	u, err := s.PresignGet(ctx, "faces/u1/f1.png", time.Minute)
	if err != nil || !strings.HasPrefix(u, "memory://iris-faces/faces/u1/f1.png") {
		t.Fatalf("presign: %q err=%v", u, err)
	}
	data, ct, ok := s.Object("faces/u1/f1.png")
	if !ok || string(data) != "img" || ct != "image/png" {
		t.Fatalf("object mismatch: %q %q %v", data, ct, ok)
	}
}
