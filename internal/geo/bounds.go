// Package geo validates farm coordinates and resolves them to addresses.
package geo

import "math"

// ValidateBounds reports whether lat is within [-90, 90] and lon within
// [-180, 180]. NaN and infinities are rejected.
func ValidateBounds(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
