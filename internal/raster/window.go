// Package raster reads spectral band pixel values from remote
// cloud-optimized rasters, restricted to a geographic window.
package raster

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/landsight/landsight-cli/internal/geo"
)

// Window is a pixel-space read rectangle. Coordinates are clamped to the
// raster's valid range and Width/Height are at least 1.
type Window struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FullWindow covers the whole raster.
func FullWindow(width, height int) Window {
	return Window{X: 0, Y: 0, Width: width, Height: height}
}

// ResolveWindow maps a geographic window onto pixel space using the
// raster's own bounding box and dimensions. North maps to row 0. The
// result is clamped to the raster and never degenerates below 1x1.
func ResolveWindow(win geo.BBox, raster geo.BBox, width, height int) (Window, error) {
	if width <= 0 || height <= 0 {
		return Window{}, eris.Errorf("raster: non-positive dimensions %dx%d", width, height)
	}
	spanX := raster.East - raster.West
	spanY := raster.North - raster.South
	if spanX <= 0 || spanY <= 0 {
		return Window{}, eris.Errorf("raster: degenerate raster bbox %+v", raster)
	}

	xMin := int(math.Floor((win.West - raster.West) / spanX * float64(width)))
	xMax := int(math.Ceil((win.East - raster.West) / spanX * float64(width)))
	yMin := int(math.Floor((raster.North - win.North) / spanY * float64(height)))
	yMax := int(math.Ceil((raster.North - win.South) / spanY * float64(height)))

	xMin = clampInt(xMin, 0, width-1)
	xMax = clampInt(xMax, xMin+1, width)
	yMin = clampInt(yMin, 0, height-1)
	yMax = clampInt(yMax, yMin+1, height)

	return Window{
		X:      xMin,
		Y:      yMin,
		Width:  xMax - xMin,
		Height: yMax - yMin,
	}, nil
}

// scale maps a window between resolution levels of the same extent.
func (w Window) scale(fromW, fromH, toW, toH int) Window {
	if fromW <= 0 || fromH <= 0 {
		return w
	}
	sx := float64(toW) / float64(fromW)
	sy := float64(toH) / float64(fromH)
	out := Window{
		X:      int(math.Floor(float64(w.X) * sx)),
		Y:      int(math.Floor(float64(w.Y) * sy)),
		Width:  int(math.Ceil(float64(w.Width) * sx)),
		Height: int(math.Ceil(float64(w.Height) * sy)),
	}
	out.X = clampInt(out.X, 0, toW-1)
	out.Y = clampInt(out.Y, 0, toH-1)
	out.Width = clampInt(out.Width, 1, toW-out.X)
	out.Height = clampInt(out.Height, 1, toH-out.Y)
	return out
}

// dim is a resolution level's pixel size, used for overview selection.
type dim struct {
	width  int
	height int
}

func (d dim) maxSide() int {
	if d.width > d.height {
		return d.width
	}
	return d.height
}

// pickLevel chooses an overview index for the target dimension budget.
// It returns the largest overview that fits within maxDim, the coarsest
// overview when none fits, and -1 (full resolution) when the raster has
// no overviews at all.
func pickLevel(overviews []dim, maxDim int) int {
	if len(overviews) == 0 {
		return -1
	}

	best := -1
	bestSide := -1
	coarsest := 0
	coarsestSide := overviews[0].maxSide()
	for i, d := range overviews {
		side := d.maxSide()
		if side <= maxDim && side > bestSide {
			best = i
			bestSide = side
		}
		if side < coarsestSide {
			coarsest = i
			coarsestSide = side
		}
	}
	if best >= 0 {
		return best
	}
	return coarsest
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
