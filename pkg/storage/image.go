package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// MaxImageBytes bounds a decoded face image.
const MaxImageBytes = 5 << 20

var (
	ErrNotDataURL      = errors.New("not a data url")
	ErrImageTooLarge   = errors.New("image exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported image type")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Image is a decoded data: URL payload.
type Image struct {
	Data        []byte
	ContentType string
}

// DecodeDataURL parses a base64 "data:image/...;base64," URL.
// Inputs that are not data URLs return ErrNotDataURL so callers can keep them verbatim.
func DecodeDataURL(raw string) (Image, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return Image{}, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return Image{}, fmt.Errorf("malformed data url: %w", ErrNotDataURL)
	}
	contentType, encoding, _ := strings.Cut(header, ";")
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if _, ok := allowedImageTypes[contentType]; !ok {
		return Image{}, ErrUnsupportedType
	}
	if !strings.EqualFold(strings.TrimSpace(encoding), "base64") {
		return Image{}, fmt.Errorf("data url must be base64 encoded")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}
	return Image{Data: data, ContentType: contentType}, nil
}

// FaceImageKey is the object key for a face owned by userID.
func FaceImageKey(userID, faceID, contentType string) string {
	return path.Join("faces", userID, faceID+allowedImageTypes[contentType])
}

// Reference renders the stored form of an object location.
func Reference(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

// ParseReference splits an s3:// reference. ok is false for any other URL.
func ParseReference(ref string) (bucket, key string, ok bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", false
	}
	return u.Host, key, true
}
