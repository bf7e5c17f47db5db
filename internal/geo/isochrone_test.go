package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A rough 30-minute drive zone around downtown Denver.
const denverPolygon = `{"type":"Polygon","coordinates":[[[-105.2,39.6],[-104.7,39.6],[-104.7,39.95],[-105.2,39.95],[-105.2,39.6]]]}`

func TestParseIsochrone_Forms(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "polygon", data: denverPolygon},
		{name: "feature", data: `{"type":"Feature","properties":{"contour":30},"geometry":` + denverPolygon + `}`},
		{name: "feature collection", data: `{"type":"FeatureCollection","features":[` +
			`{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[-105,39.7]}},` +
			`{"type":"Feature","properties":{},"geometry":` + denverPolygon + `}]}`},
		{name: "multipolygon", data: `{"type":"MultiPolygon","coordinates":[[[[-105.2,39.6],[-104.7,39.6],[-104.7,39.95],[-105.2,39.95],[-105.2,39.6]]],` +
			`[[[-80,25],[-79,25],[-79,26],[-80,25]]]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iso, err := ParseIsochrone([]byte(tt.data))
			require.NoError(t, err)
			assert.True(t, iso.Contains(39.74, -104.99))  // downtown
			assert.False(t, iso.Contains(25.5, -79.5))    // Miami: only the first polygon counts
			assert.False(t, iso.Contains(40.01, -105.27)) // Boulder
		})
	}
}

func TestParseIsochrone_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "not json", data: `nope`, want: "geo: decode isochrone"},
		{name: "point", data: `{"type":"Point","coordinates":[1,2]}`, want: "unsupported isochrone geometry"},
		{name: "feature without geometry", data: `{"type":"Feature","properties":{},"geometry":null}`, want: "no geometry"},
		{name: "collection without polygons", data: `{"type":"FeatureCollection","features":[]}`, want: "no polygon feature"},
		{name: "empty polygon", data: `{"type":"Polygon","coordinates":[]}`, want: "geo:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIsochrone([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewIsochrone_ClosesRing(t *testing.T) {
	iso, err := NewIsochrone([][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	require.NoError(t, err)

	ring := iso.Ring()
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])

	minLon, minLat, maxLon, maxLat := iso.Bounds()
	assert.Equal(t, []float64{0, 0, 10, 10}, []float64{minLon, minLat, maxLon, maxLat})
}

func TestNewIsochrone_TooFewPoints(t *testing.T) {
	_, err := NewIsochrone([][2]float64{{0, 0}, {1, 1}})
	require.Error(t, err)
}

func TestContains_ConcaveRing(t *testing.T) {
	// An L shape: the notch at the top right is outside.
	iso, err := NewIsochrone([][2]float64{{0, 0}, {10, 0}, {10, 5}, {5, 5}, {5, 10}, {0, 10}})
	require.NoError(t, err)

	assert.True(t, iso.Contains(2, 2))
	assert.True(t, iso.Contains(8, 2))
	assert.True(t, iso.Contains(2, 8))
	assert.False(t, iso.Contains(8, 8)) // inside the bounding box, outside the ring
	assert.False(t, iso.Contains(-1, 5))
}

func TestContains_LatLonOrder(t *testing.T) {
	// A thin box that only contains points with lon in [100,101] and lat in [0,1].
	iso, err := NewIsochrone([][2]float64{{100, 0}, {101, 0}, {101, 1}, {100, 1}})
	require.NoError(t, err)

	assert.True(t, iso.Contains(0.5, 100.5))
	assert.False(t, iso.Contains(100.5, 0.5))
}
