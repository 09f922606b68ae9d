// Package viz derives map-visualization parameters (tile URL template,
// preview URL, color ramp, zoom) for an analyzed catalog item.
// Visualization is best effort: resolution failures produce an inert
// fallback, never an error.
package viz

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/landsight/landsight-cli/internal/catalog"
	"github.com/landsight/landsight-cli/internal/geo"
	"github.com/landsight/landsight-cli/internal/scorer"
	"github.com/landsight/landsight-cli/internal/spectral"
)

const (
	defaultTileBaseURL = "https://titiler.xyz"
	fallbackDocsURL    = "https://titiler.xyz/docs"

	// Sentinel-2 surface reflectance renders well stretched over this range.
	defaultRescale = "0,4000"
)

// Params locates a rendered view of the analyzed scene. TileURLTemplate
// keeps {z}/{x}/{y} placeholders for the map client to substitute.
type Params struct {
	TileURLTemplate string   `json:"tile_url_template"`
	PreviewURL      string   `json:"preview_url"`
	Bounds          geo.BBox `json:"bounds"`
	CenterLat       float64  `json:"center_lat"`
	CenterLon       float64  `json:"center_lon"`
	SuggestedZoom   int      `json:"suggested_zoom"`
	ColorMap        string   `json:"color_map"`
	Band            string   `json:"band"`
}

// Locator builds tile and preview URLs against a titiler-compatible
// dynamic tile server.
type Locator struct {
	baseURL string
}

// NewLocator creates a locator for the tile server at baseURL. An empty
// baseURL uses the public default.
func NewLocator(baseURL string) *Locator {
	if baseURL == "" {
		baseURL = defaultTileBaseURL
	}
	return &Locator{baseURL: strings.TrimRight(baseURL, "/")}
}

// Locate picks a band and color ramp for the project type, computes view
// bounds, center, and zoom from the bbox, and builds tile/preview URLs.
// When no usable asset can be resolved it returns the inert fallback.
func (l *Locator) Locate(item *catalog.Item, projectType scorer.ProjectType, bbox geo.BBox) Params {
	role, ramp, ok := l.selectBand(item, projectType)
	if !ok {
		return fallbackParams()
	}
	ref := item.Assets[role]

	tileURL, previewURL, ok := l.buildURLs(item, ref, role, ramp)
	if !ok {
		return fallbackParams()
	}

	lat, lon := bbox.Center()
	return Params{
		TileURLTemplate: tileURL,
		PreviewURL:      previewURL,
		Bounds:          bbox,
		CenterLat:       lat,
		CenterLon:       lon,
		SuggestedZoom:   SuggestedZoom(bbox),
		ColorMap:        ramp,
		Band:            string(role),
	}
}

// bandFallbackOrder makes the any-available-band fallback deterministic.
var bandFallbackOrder = []spectral.BandRole{
	spectral.Red, spectral.Green, spectral.NIR, spectral.SWIR1, spectral.SWIR2,
}

// selectBand picks the preferred band and ramp for the project type,
// falling back to any band the item carries.
func (l *Locator) selectBand(item *catalog.Item, projectType scorer.ProjectType) (spectral.BandRole, string, bool) {
	var preferred []spectral.BandRole
	var ramp string

	switch projectType {
	case scorer.Agricultural:
		preferred = []spectral.BandRole{spectral.NIR}
		ramp = "greens"
	case scorer.Residential, scorer.Commercial, scorer.Industrial:
		preferred = []spectral.BandRole{spectral.SWIR1, spectral.SWIR2}
		ramp = "reds"
	default:
		preferred = []spectral.BandRole{spectral.Red}
		ramp = "terrain"
	}

	for _, role := range preferred {
		if item.HasBand(role) {
			return role, ramp, true
		}
	}
	for _, role := range bandFallbackOrder {
		if item.HasBand(role) {
			return role, ramp, true
		}
	}
	return "", "", false
}

// buildURLs prefers the item's STAC endpoint so the tile server can read
// the asset by name; without a self link it falls back to addressing the
// raster URL directly through the COG endpoints.
func (l *Locator) buildURLs(item *catalog.Item, ref catalog.Ref, role spectral.BandRole, ramp string) (tileURL, previewURL string, ok bool) {
	q := url.Values{}
	q.Set("rescale", defaultRescale)
	q.Set("colormap_name", ramp)

	switch {
	case item.SelfURL != "":
		q.Set("url", item.SelfURL)
		assetKey := ref.Key
		if assetKey == "" {
			assetKey = string(role)
		}
		q.Set("assets", assetKey)
		tileURL = fmt.Sprintf("%s/stac/tiles/WebMercatorQuad/{z}/{x}/{y}.png?%s", l.baseURL, q.Encode())
		previewURL = fmt.Sprintf("%s/stac/preview.png?%s", l.baseURL, q.Encode())
	case ref.URL != "":
		q.Set("url", ref.URL)
		tileURL = fmt.Sprintf("%s/cog/tiles/WebMercatorQuad/{z}/{x}/{y}.png?%s", l.baseURL, q.Encode())
		previewURL = fmt.Sprintf("%s/cog/preview.png?%s", l.baseURL, q.Encode())
	default:
		return "", "", false
	}
	return tileURL, previewURL, true
}

// SuggestedZoom maps the bbox's larger span in degrees onto a web map
// zoom level, wider area to lower zoom.
func SuggestedZoom(bbox geo.BBox) int {
	span := bbox.MaxSpanDeg()
	switch {
	case span > 10:
		return 6
	case span > 5:
		return 7
	case span > 2:
		return 8
	case span > 1:
		return 9
	case span > 0.5:
		return 10
	case span > 0.1:
		return 12
	default:
		return 14
	}
}

func fallbackParams() Params {
	return Params{
		TileURLTemplate: fallbackDocsURL,
		PreviewURL:      fallbackDocsURL,
	}
}
