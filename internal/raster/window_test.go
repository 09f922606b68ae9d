package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landsight/landsight-cli/internal/geo"
)

var rasterExtent = geo.BBox{West: 73.0, South: 18.0, East: 74.0, North: 19.0}

func TestResolveWindowCentered(t *testing.T) {
	// Middle half of a 1000x1000 raster.
	win, err := ResolveWindow(
		geo.BBox{West: 73.25, South: 18.25, East: 73.75, North: 18.75},
		rasterExtent, 1000, 1000,
	)
	require.NoError(t, err)
	assert.Equal(t, Window{X: 250, Y: 250, Width: 500, Height: 500}, win)
}

func TestResolveWindowYAxisFlipped(t *testing.T) {
	// A window hugging the northern edge must map to row 0.
	win, err := ResolveWindow(
		geo.BBox{West: 73.0, South: 18.75, East: 74.0, North: 19.0},
		rasterExtent, 100, 100,
	)
	require.NoError(t, err)
	assert.Equal(t, 0, win.Y)
	assert.Equal(t, 25, win.Height)

	// And a southern-edge window maps to the bottom rows.
	win, err = ResolveWindow(
		geo.BBox{West: 73.0, South: 18.0, East: 74.0, North: 18.25},
		rasterExtent, 100, 100,
	)
	require.NoError(t, err)
	assert.Equal(t, 75, win.Y)
	assert.Equal(t, 25, win.Height)
}

func TestResolveWindowClampsToRaster(t *testing.T) {
	// Window extends beyond the raster on all sides.
	win, err := ResolveWindow(
		geo.BBox{West: 72.0, South: 17.0, East: 75.0, North: 20.0},
		rasterExtent, 200, 300,
	)
	require.NoError(t, err)
	assert.Equal(t, Window{X: 0, Y: 0, Width: 200, Height: 300}, win)
}

func TestResolveWindowDegenerateInputMinimumSize(t *testing.T) {
	// A near-zero-extent window still yields at least one pixel.
	win, err := ResolveWindow(
		geo.BBox{West: 73.5, South: 18.5, East: 73.5000001, North: 18.5000001},
		rasterExtent, 100, 100,
	)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, win.Width, 1)
	assert.GreaterOrEqual(t, win.Height, 1)
	assert.LessOrEqual(t, win.X+win.Width, 100)
	assert.LessOrEqual(t, win.Y+win.Height, 100)
}

func TestResolveWindowOutsideRasterClamps(t *testing.T) {
	// A window entirely west of the raster clamps to the edge column.
	win, err := ResolveWindow(
		geo.BBox{West: 70.0, South: 18.4, East: 70.1, North: 18.6},
		rasterExtent, 100, 100,
	)
	require.NoError(t, err)
	assert.Equal(t, 0, win.X)
	assert.Equal(t, 1, win.Width)
}

func TestResolveWindowErrors(t *testing.T) {
	valid := geo.BBox{West: 73.2, South: 18.2, East: 73.4, North: 18.4}

	_, err := ResolveWindow(valid, rasterExtent, 0, 100)
	assert.Error(t, err)

	_, err = ResolveWindow(valid, geo.BBox{West: 74, South: 18, East: 73, North: 19}, 100, 100)
	assert.Error(t, err)
}

func TestWindowScale(t *testing.T) {
	win := Window{X: 200, Y: 400, Width: 600, Height: 200}

	scaled := win.scale(1000, 1000, 250, 250)
	assert.Equal(t, Window{X: 50, Y: 100, Width: 150, Height: 50}, scaled)

	// Scaling down never produces an empty window.
	tiny := Window{X: 999, Y: 999, Width: 1, Height: 1}
	scaled = tiny.scale(1000, 1000, 4, 4)
	assert.GreaterOrEqual(t, scaled.Width, 1)
	assert.GreaterOrEqual(t, scaled.Height, 1)
	assert.LessOrEqual(t, scaled.X+scaled.Width, 4)
	assert.LessOrEqual(t, scaled.Y+scaled.Height, 4)
}

func TestPickLevel(t *testing.T) {
	tests := []struct {
		name      string
		overviews []dim
		maxDim    int
		want      int
	}{
		{name: "no_overviews_full_res", overviews: nil, maxDim: 1024, want: -1},
		{
			name:      "largest_fitting_overview",
			overviews: []dim{{5490, 5490}, {2745, 2745}, {1372, 1372}, {686, 686}, {343, 343}},
			maxDim:    1024,
			want:      3,
		},
		{
			name:      "none_fit_picks_coarsest",
			overviews: []dim{{8192, 8192}, {4096, 4096}},
			maxDim:    1024,
			want:      1,
		},
		{
			name:      "wide_raster_uses_larger_side",
			overviews: []dim{{2048, 512}, {1024, 256}},
			maxDim:    1024,
			want:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickLevel(tt.overviews, tt.maxDim))
		})
	}
}

func TestVsiPath(t *testing.T) {
	assert.Equal(t, "/vsicurl/https://x.com/b.tif", vsiPath("https://x.com/b.tif"))
	assert.Equal(t, "/vsicurl/http://x.com/b.tif", vsiPath("http://x.com/b.tif"))
	assert.Equal(t, "/vsis3/bucket/key.tif", vsiPath("s3://bucket/key.tif"))
	assert.Equal(t, "/data/local.tif", vsiPath("/data/local.tif"))
}

func TestFullWindow(t *testing.T) {
	assert.Equal(t, Window{X: 0, Y: 0, Width: 512, Height: 256}, FullWindow(512, 256))
}
