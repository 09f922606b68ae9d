// Package spectral computes normalized-difference indices from averaged
// band values and classifies them into human-readable interpretations.
package spectral

import "strings"

// BandRole identifies a spectral band by its role rather than by the
// provider-specific asset key. The catalog boundary resolves free-form
// asset names into this closed set.
type BandRole string

const (
	Red   BandRole = "red"
	Green BandRole = "green"
	NIR   BandRole = "nir"
	SWIR1 BandRole = "swir1"
	SWIR2 BandRole = "swir2"
)

// rolePreference lists each role's provider asset keys from most to
// least preferred. Covers Sentinel-2 (B02..B12, nir08, swir16/swir22),
// Landsat (band2..band7, sr_b*), and the plain-name convention. Order
// matters: items can carry several aliases for one role (earth-search
// Sentinel-2 has both nir/B08 and nir08/B8A), and the chosen asset must
// not depend on map iteration.
var rolePreference = map[BandRole][]string{
	Red:   {"red", "b04", "b4", "band4", "sr_b4"},
	Green: {"green", "b03", "b3", "band3", "sr_b3"},
	NIR:   {"nir", "nir08", "b08", "b8", "band5", "sr_b5"},
	SWIR1: {"swir16", "swir1", "b11", "band6", "sr_b6"},
	SWIR2: {"swir22", "swir2", "b12", "band7", "sr_b7"},
}

// roleAliases is the flat key-to-role view of rolePreference.
var roleAliases = func() map[string]BandRole {
	m := make(map[string]BandRole)
	for role, keys := range rolePreference {
		for _, k := range keys {
			m[k] = role
		}
	}
	return m
}()

// AllRoles returns the band roles in a fixed order.
func AllRoles() []BandRole {
	return []BandRole{Red, Green, NIR, SWIR1, SWIR2}
}

// PreferredAliases returns the role's asset keys, most preferred first.
func PreferredAliases(role BandRole) []string {
	return rolePreference[role]
}

// ResolveRole maps an asset key to a band role, case-insensitively.
func ResolveRole(assetKey string) (BandRole, bool) {
	role, ok := roleAliases[strings.ToLower(strings.TrimSpace(assetKey))]
	return role, ok
}

// Averages holds the mean pixel value per band role for one analysis window.
type Averages map[BandRole]float64

// Mean returns the arithmetic mean of the pixel values. Outliers are not
// filtered. An empty slice yields 0.
func Mean(pixels []float64) float64 {
	if len(pixels) == 0 {
		return 0
	}
	var sum float64
	for _, v := range pixels {
		sum += v
	}
	return sum / float64(len(pixels))
}
