package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBBoxValidate(t *testing.T) {
	tests := []struct {
		name    string
		bbox    BBox
		wantErr string
	}{
		{name: "valid", bbox: BBox{West: 73.8, South: 18.4, East: 73.9, North: 18.6}},
		{name: "west_not_less_than_east", bbox: BBox{West: 74, South: 18, East: 73, North: 19}, wantErr: "west"},
		{name: "south_not_less_than_north", bbox: BBox{West: 73, South: 19, East: 74, North: 18}, wantErr: "south"},
		{name: "degenerate", bbox: BBox{West: 73, South: 18, East: 73, North: 19}, wantErr: "west"},
		{name: "longitude_out_of_range", bbox: BBox{West: -190, South: 18, East: 73, North: 19}, wantErr: "longitude"},
		{name: "latitude_out_of_range", bbox: BBox{West: 73, South: 18, East: 74, North: 95}, wantErr: "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bbox.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromPointContainsCenter(t *testing.T) {
	points := []struct {
		lat, lon, radius float64
	}{
		{18.52, 73.85, 1000},
		{-33.86, 151.2, 5000},
		{0, 0, 250},
		{59.3, 18.07, 15000},
	}

	for _, p := range points {
		for _, buffered := range []bool{false, true} {
			b := FromPoint(p.lat, p.lon, p.radius, buffered)
			require.NoError(t, b.Validate())
			assert.True(t, b.Contains(p.lat, p.lon),
				"bbox %+v should contain its center (%v, %v)", b, p.lat, p.lon)

			lat, lon := b.Center()
			assert.InDelta(t, p.lat, lat, 1e-9)
			assert.InDelta(t, p.lon, lon, 1e-9)
		}
	}
}

func TestFromPointBufferWidens(t *testing.T) {
	plain := FromPoint(18.5, 73.85, 1000, false)
	buffered := FromPoint(18.5, 73.85, 1000, true)
	assert.Greater(t, buffered.WidthDeg(), plain.WidthDeg())
	assert.InDelta(t, plain.WidthDeg()*1.2, buffered.WidthDeg(), 1e-9)
}

func TestAreaSquareMeters(t *testing.T) {
	// Roughly 11.1km x 11.1km at the equator.
	b := BBox{West: 0, South: -0.05, East: 0.1, North: 0.05}
	area := b.AreaSquareMeters()
	assert.InDelta(t, 11100.0*11100.0, area, 11100.0*11100.0*0.01)

	// At 60N the east-west distance halves.
	high := BBox{West: 0, South: 59.95, East: 0.1, North: 60.05}
	assert.InDelta(t, area/2, high.AreaSquareMeters(), area*0.01)
}

func TestPolygonClosedRing(t *testing.T) {
	b := BBox{West: 73.8, South: 18.4, East: 73.9, North: 18.6}
	poly := b.Polygon()
	require.NotNil(t, poly)
	ring := poly.Coords()[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])
}

func TestFromSlice(t *testing.T) {
	b, err := FromSlice([]float64{73.8, 18.4, 73.9, 18.6})
	require.NoError(t, err)
	assert.Equal(t, BBox{West: 73.8, South: 18.4, East: 73.9, North: 18.6}, b)
	assert.Equal(t, []float64{73.8, 18.4, 73.9, 18.6}, b.Slice())

	_, err = FromSlice([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestFormatInterval(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end *time.Time
		want       string
	}{
		{name: "both", start: &start, end: &end, want: "2024-01-15T00:00:00Z/2024-03-20T23:59:59Z"},
		{name: "start_only", start: &start, want: "2024-01-15T00:00:00Z/.."},
		{name: "end_only", end: &end, want: "../2024-03-20T23:59:59Z"},
		{name: "neither", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInterval(tt.start, tt.end))
		})
	}
}
