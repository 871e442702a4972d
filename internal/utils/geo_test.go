package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLatLng(t *testing.T) {
	lat, lng, err := ParseLatLng("34.111745,-118.113491")
	require.NoError(t, err)
	assert.Equal(t, 34.111745, lat)
	assert.Equal(t, -118.113491, lng)

	for _, bad := range []string{"", "34.1", "34.1,", "abc,1", "91,10", "10,181"} {
		_, _, err := ParseLatLng(bad)
		assert.ErrorIs(t, err, ErrBadLatLng, bad)
	}
}

func TestRadiusAndMultiplier(t *testing.T) {
	assert.InDelta(t, 1.0, RadiusRadians(3963.2, "mi"), 1e-9)
	assert.InDelta(t, 1.0, RadiusRadians(6378.1, "km"), 1e-9)
	assert.Equal(t, 0.000621371, DistanceMultiplier("mi"))
	assert.Equal(t, 0.001, DistanceMultiplier("km"))
}
