// Package catalog searches a STAC catalog for imagery matching a bounding
// box, time range, and cloud-cover threshold, and ranks the results.
package catalog

import (
	"encoding/json"
	"strings"
	"time"

	gostac "github.com/planetlabs/go-stac"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/landsight/landsight-cli/internal/geo"
	"github.com/landsight/landsight-cli/internal/spectral"
)

// Ref points at a remote-readable raster asset for one band. Key is the
// asset's original name in the catalog item, needed when addressing the
// asset through a tile server.
type Ref struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	MediaType string `json:"media_type,omitempty"`
}

// Item is one catalog result, immutable once retrieved. Free-form asset
// keys from the wire are resolved into the closed band-role set at this
// boundary; unrecognized assets are dropped.
type Item struct {
	ID         string
	Collection string
	BBox       geo.BBox
	Geometry   geom.T
	Acquired   time.Time
	CloudCover *float64
	Resolution float64
	Source     string
	SelfURL    string
	Assets     map[spectral.BandRole]Ref
}

// HasBand reports whether the item carries an asset for the role.
func (it *Item) HasBand(role spectral.BandRole) bool {
	_, ok := it.Assets[role]
	return ok
}

// fromSTAC converts a wire item into the internal model. Fields that fail
// to parse are left zero rather than failing the whole search.
func fromSTAC(src *gostac.Item) Item {
	it := Item{
		ID:         src.Id,
		Collection: src.Collection,
		Source:     src.Collection,
	}

	if b, err := geo.FromSlice(src.Bbox); err == nil {
		it.BBox = b
	}

	if src.Properties != nil {
		if s, ok := src.Properties["datetime"].(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				it.Acquired = t
			}
		}
		if cc, ok := src.Properties["eo:cloud_cover"].(float64); ok {
			v := cc
			it.CloudCover = &v
		}
		if gsd, ok := src.Properties["gsd"].(float64); ok {
			it.Resolution = gsd
		}
		if c, ok := src.Properties["constellation"].(string); ok && c != "" {
			it.Source = c
		}
	}

	for _, link := range src.Links {
		if link.Rel == "self" {
			it.SelfURL = link.Href
			break
		}
	}

	it.Assets = resolveAssets(src.Assets)

	it.Geometry = decodeGeometry(src.Geometry)

	return it
}

// resolveAssets maps free-form asset keys onto band roles. Each role
// takes the most preferred alias the item carries, so identical catalog
// responses always select the same rasters regardless of map iteration
// order (earth-search Sentinel-2 items carry both nir/B08 and nir08/B8A).
func resolveAssets(assets map[string]*gostac.Asset) map[spectral.BandRole]Ref {
	byAlias := make(map[string]string, len(assets))
	for key, asset := range assets {
		if asset == nil || asset.Href == "" {
			continue
		}
		alias := strings.ToLower(strings.TrimSpace(key))
		if _, taken := byAlias[alias]; !taken {
			byAlias[alias] = key
		}
	}

	resolved := make(map[spectral.BandRole]Ref)
	for _, role := range spectral.AllRoles() {
		for _, alias := range spectral.PreferredAliases(role) {
			key, ok := byAlias[alias]
			if !ok {
				continue
			}
			asset := assets[key]
			resolved[role] = Ref{Key: key, URL: asset.Href, MediaType: asset.Type}
			break
		}
	}
	return resolved
}

// decodeGeometry parses the item's GeoJSON footprint. A nil return is
// fine; the bbox is the authoritative extent for windowing.
func decodeGeometry(raw any) geom.T {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		zap.L().Debug("catalog: unparseable item geometry", zap.Error(err))
		return nil
	}
	return g
}
