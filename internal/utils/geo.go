package utils

import (
	"errors"
	"strconv"
	"strings"
)

// Mean earth radius, used to turn a distance into radians for
// $centerSphere queries.
const (
	earthRadiusMi = 3963.2
	earthRadiusKm = 6378.1
)

// ErrBadLatLng is returned when a "lat,lng" path segment cannot be parsed.
var ErrBadLatLng = errors.New("please provide latitude and longitude in the format lat,lng")

// ParseLatLng splits a "lat,lng" pair.
func ParseLatLng(s string) (lat, lng float64, err error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, ErrBadLatLng
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, ErrBadLatLng
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, ErrBadLatLng
	}
	return lat, lng, nil
}

// RadiusRadians converts a distance in unit ("mi" or kilometers otherwise)
// into radians on a spherical earth.
func RadiusRadians(distance float64, unit string) float64 {
	if unit == "mi" {
		return distance / earthRadiusMi
	}
	return distance / earthRadiusKm
}

// DistanceMultiplier converts meters into unit ("mi" or kilometers
// otherwise).
func DistanceMultiplier(unit string) float64 {
	if unit == "mi" {
		return 0.000621371
	}
	return 0.001
}
