package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// AddressNotFound is returned when the lookup succeeds with no match.
	AddressNotFound = "Location address not found"
	// AddressUnavailable is returned when the lookup itself fails.
	AddressUnavailable = "Unable to fetch address"

	defaultTimeout = 5 * time.Second
)

// IsSentinel reports whether address is one of the failure placeholders
// rather than a resolved label.
func IsSentinel(address string) bool {
	return address == AddressNotFound || address == AddressUnavailable
}

// Resolver turns coordinates into a human-readable address. Implementations
// never fail; they return a sentinel string instead.
type Resolver interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) string
}

// Geocoder calls the openrouteservice reverse geocoding endpoint.
type Geocoder struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

var _ Resolver = (*Geocoder)(nil)

// NewGeocoder creates a geocoder. A non-positive timeout falls back to five seconds.
func NewGeocoder(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Geocoder {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Geocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type reverseResponse struct {
	Features []struct {
		Properties struct {
			Label    string `json:"label"`
			Country  string `json:"country"`
			Region   string `json:"region"`
			Locality string `json:"locality"`
		} `json:"properties"`
	} `json:"features"`
}

// ReverseGeocode performs a single lookup. Errors are logged and absorbed.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	label, err := g.lookup(ctx, lat, lon)
	if err != nil {
		g.log.Warn("reverse geocoding failed",
			zap.Float64("latitude", lat),
			zap.Float64("longitude", lon),
			zap.Error(err),
		)
		return AddressUnavailable
	}
	if label == "" {
		return AddressNotFound
	}
	return label
}

func (g *Geocoder) lookup(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("api_key", g.apiKey)
	q.Set("point.lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("point.lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("size", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/geocode/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status: %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(body.Features) == 0 {
		return "", nil
	}
	return strings.TrimSpace(body.Features[0].Properties.Label), nil
}
