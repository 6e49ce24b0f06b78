package geo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{name: "nairobi", lat: -1.2921, lon: 36.8219, want: true},
		{name: "origin", lat: 0, lon: 0, want: true},
		{name: "north-east corner", lat: 90, lon: 180, want: true},
		{name: "south-west corner", lat: -90, lon: -180, want: true},
		{name: "latitude above", lat: 90.000001, lon: 0},
		{name: "latitude below", lat: -95, lon: 0},
		{name: "longitude above", lat: 0, lon: 180.5},
		{name: "longitude below", lat: 0, lon: -181},
		{name: "latitude NaN", lat: math.NaN(), lon: 0},
		{name: "longitude NaN", lat: 0, lon: math.NaN()},
		{name: "infinite", lat: math.Inf(1), lon: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateBounds(tt.lat, tt.lon))
		})
	}
}

func TestGeocoder_ReverseGeocode(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "label returned",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/geocode/reverse", r.URL.Path)
				assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
				assert.Equal(t, "36.8219", r.URL.Query().Get("point.lon"))
				assert.Equal(t, "-1.2921", r.URL.Query().Get("point.lat"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"features":[{"properties":{"label":"Nairobi, Kenya"}}]}`))
			},
			want: "Nairobi, Kenya",
		},
		{
			name: "empty result set",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"features":[]}`))
			},
			want: AddressNotFound,
		},
		{
			name: "upstream error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			want: AddressUnavailable,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			want: AddressUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g := NewGeocoder(srv.URL, "test-key", time.Second, zaptest.NewLogger(t))
			assert.Equal(t, tt.want, g.ReverseGeocode(context.Background(), -1.2921, 36.8219))
		})
	}
}

func TestGeocoder_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"features":[{"properties":{"label":"late"}}]}`))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, "k", 20*time.Millisecond, nil)
	assert.Equal(t, AddressUnavailable, g.ReverseGeocode(context.Background(), 0, 0))
}

func TestGeocoder_Unreachable(t *testing.T) {
	g := NewGeocoder("http://127.0.0.1:1", "k", time.Second, nil)
	assert.Equal(t, AddressUnavailable, g.ReverseGeocode(context.Background(), 0, 0))
}

type countingResolver struct {
	calls  int
	result string
}

func (r *countingResolver) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	r.calls++
	return r.result
}

func TestCachedResolver_PassesThroughWithoutCache(t *testing.T) {
	next := &countingResolver{result: "Nakuru, Kenya"}
	r := NewCachedResolver(next, nil, time.Hour)

	require.Equal(t, "Nakuru, Kenya", r.ReverseGeocode(context.Background(), -0.3031, 36.08))
	require.Equal(t, "Nakuru, Kenya", r.ReverseGeocode(context.Background(), -0.3031, 36.08))
	assert.Equal(t, 2, next.calls)
}

func TestAddressKey(t *testing.T) {
	assert.Equal(t, "geo:address:-1.29210,36.82190", addressKey(-1.2921, 36.8219))
	assert.Equal(t, addressKey(-1.292101, 36.821901), addressKey(-1.292099, 36.821899))
}
