// Package geo turns coordinates into a street and city for the guide view.
package geo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"irisguide/services/companion/internal/device"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	FallbackStreet      = "Market Street"
	FallbackCity        = "San Francisco, CA"
)

// Address is the two-line label shown under the map.
type Address struct {
	Street string
	City   string
}

// Fallback is shown whenever reverse geocoding fails.
var Fallback = Address{Street: FallbackStreet, City: FallbackCity}

// Geocoder resolves coordinates to an address.
type Geocoder interface {
	Reverse(ctx context.Context, pos device.Position) (Address, error)
}

// Nominatim calls the OpenStreetMap reverse endpoint.
type Nominatim struct {
	http *resty.Client
}

// NewNominatim builds a client. An empty baseURL selects the public endpoint.
func NewNominatim(baseURL, userAgent string) *Nominatim {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "iris-companion"
	}
	return &Nominatim{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10*time.Second).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "application/json"),
	}
}

type reverseResponse struct {
	Address *struct {
		Road   string `json:"road"`
		Suburb string `json:"suburb"`
		City   string `json:"city"`
		Town   string `json:"town"`
		State  string `json:"state"`
	} `json:"address"`
}

// Reverse returns the address at pos. Missing parts use the fallback values.
func (n *Nominatim) Reverse(ctx context.Context, pos device.Position) (Address, error) {
	var out reverseResponse
	resp, err := n.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format": "jsonv2",
			"lat":    strconv.FormatFloat(pos.Lat, 'f', -1, 64),
			"lon":    strconv.FormatFloat(pos.Lon, 'f', -1, 64),
		}).
		SetResult(&out).
		Get("/reverse")
	if err != nil {
		return Address{}, fmt.Errorf("reverse geocode: %w", err)
	}
	if resp.IsError() {
		return Address{}, fmt.Errorf("reverse geocode: %s", resp.Status())
	}
	if out.Address == nil {
		return Fallback, nil
	}
	a := out.Address
	return Address{
		Street: firstNonEmpty(a.Road, a.Suburb, FallbackStreet),
		City:   firstNonEmpty(a.City, a.Town, a.State, FallbackCity),
	}, nil
}

// Resolve never fails: any geocoder error yields Fallback.
func Resolve(ctx context.Context, g Geocoder, pos device.Position) Address {
	if g == nil {
		return Fallback
	}
	addr, err := g.Reverse(ctx, pos)
	if err != nil {
		return Fallback
	}
	return addr
}

// MapURL links to a map centred on pos.
func MapURL(pos device.Position) string {
	return fmt.Sprintf("https://maps.google.com/maps?q=%s,%s&z=15",
		strconv.FormatFloat(pos.Lat, 'f', -1, 64), strconv.FormatFloat(pos.Lon, 'f', -1, 64))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
