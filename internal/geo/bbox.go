// Package geo holds the geographic primitives shared by the analysis
// pipeline: bounding boxes, point-plus-radius derivation, and catalog
// datetime intervals.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// metersPerDegree approximates one degree of latitude (and of longitude at
// the equator) in meters.
const metersPerDegree = 111000.0

// BBox is a geographic bounding box in degrees (WGS84).
type BBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Validate checks the box is well formed: west < east, south < north, and
// all edges within valid longitude/latitude ranges.
func (b BBox) Validate() error {
	if b.West >= b.East {
		return eris.Errorf("geo: invalid bbox: west (%v) must be less than east (%v)", b.West, b.East)
	}
	if b.South >= b.North {
		return eris.Errorf("geo: invalid bbox: south (%v) must be less than north (%v)", b.South, b.North)
	}
	if b.West < -180 || b.East > 180 {
		return eris.Errorf("geo: invalid bbox: longitude out of range [-180, 180]")
	}
	if b.South < -90 || b.North > 90 {
		return eris.Errorf("geo: invalid bbox: latitude out of range [-90, 90]")
	}
	return nil
}

// FromPoint derives a bounding box around a center point. The radius in
// meters is converted to degrees at ~111km per degree. When buffered is
// set the box is widened by 20% to give the catalog search some margin.
func FromPoint(lat, lon, radiusMeters float64, buffered bool) BBox {
	deg := radiusMeters / metersPerDegree
	if buffered {
		deg *= 1.2
	}
	return BBox{
		West:  lon - deg,
		South: lat - deg,
		East:  lon + deg,
		North: lat + deg,
	}
}

// Center returns the midpoint of the box as (lat, lon).
func (b BBox) Center() (lat, lon float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}

// WidthDeg returns the east-west extent in degrees.
func (b BBox) WidthDeg() float64 {
	return b.East - b.West
}

// HeightDeg returns the north-south extent in degrees.
func (b BBox) HeightDeg() float64 {
	return b.North - b.South
}

// MaxSpanDeg returns the larger of the box's width and height in degrees.
func (b BBox) MaxSpanDeg() float64 {
	return math.Max(b.WidthDeg(), b.HeightDeg())
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b BBox) Contains(lat, lon float64) bool {
	return lon >= b.West && lon <= b.East && lat >= b.South && lat <= b.North
}

// AreaSquareMeters approximates the geographic area of the box, correcting
// east-west distance by the cosine of the center latitude.
func (b BBox) AreaSquareMeters() float64 {
	centerLat, _ := b.Center()
	widthM := b.WidthDeg() * metersPerDegree * math.Cos(centerLat*math.Pi/180)
	heightM := b.HeightDeg() * metersPerDegree
	return math.Abs(widthM * heightM)
}

// Slice returns the box as [west, south, east, north], the order catalog
// APIs expect.
func (b BBox) Slice() []float64 {
	return []float64{b.West, b.South, b.East, b.North}
}

// Polygon returns the box as a closed ring polygon in WGS84.
func (b BBox) Polygon() *geom.Polygon {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{b.West, b.South},
		{b.East, b.South},
		{b.East, b.North},
		{b.West, b.North},
		{b.West, b.South},
	}})
}

// FromSlice builds a BBox from a [west, south, east, north] slice.
func FromSlice(s []float64) (BBox, error) {
	if len(s) < 4 {
		return BBox{}, eris.Errorf("geo: bbox slice needs 4 values, got %d", len(s))
	}
	return BBox{West: s[0], South: s[1], East: s[2], North: s[3]}, nil
}
