package spectral

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Mode distinguishes measured results from the explicit degraded path.
type Mode string

const (
	// ModeMeasured means indices were computed from real pixel data.
	ModeMeasured Mode = "measured"
	// ModeEstimated means indices were synthesized because required bands
	// were unavailable and the caller opted into the degraded path.
	ModeEstimated Mode = "estimated"
)

// Indices holds the normalized-difference index values for one analysis.
// Each value is conceptually bounded to [-1, 1]; EnhancedVegetation is
// unbounded by formula but expected near that range.
type Indices struct {
	Vegetation         float64  `json:"vegetation"`
	BuiltUp            float64  `json:"built_up"`
	Water              float64  `json:"water"`
	Moisture           float64  `json:"moisture"`
	EnhancedVegetation *float64 `json:"enhanced_vegetation,omitempty"`
}

// MissingBandError reports that the bands required for index computation
// were absent from the asset set.
type MissingBandError struct {
	Roles []BandRole
}

func (e *MissingBandError) Error() string {
	names := make([]string, len(e.Roles))
	for i, r := range e.Roles {
		names[i] = string(r)
	}
	return fmt.Sprintf("spectral: required bands missing: %s", strings.Join(names, ", "))
}

// ComputeIndices derives the index set from band averages. NIR and red are
// required; without them a MissingBandError is returned. Indices whose
// other band is absent (SWIR for built-up/moisture, green for water) are
// reported as 0 rather than failing.
func ComputeIndices(avg Averages) (Indices, error) {
	var missing []BandRole
	nir, hasNIR := avg[NIR]
	if !hasNIR {
		missing = append(missing, NIR)
	}
	red, hasRed := avg[Red]
	if !hasRed {
		missing = append(missing, Red)
	}
	if len(missing) > 0 {
		return Indices{}, &MissingBandError{Roles: missing}
	}

	green, hasGreen := avg[Green]
	swir, hasSWIR := avg[SWIR1]

	idx := Indices{
		Vegetation: NormalizedDifference(nir, red),
	}
	if hasSWIR {
		idx.BuiltUp = NormalizedDifference(swir, nir)
		idx.Moisture = NormalizedDifference(nir, swir)
	}
	if hasGreen {
		idx.Water = NormalizedDifference(green, nir)
		evi := enhancedVegetation(nir, red, green)
		idx.EnhancedVegetation = &evi
	}

	return idx, nil
}

// NormalizedDifference computes (a-b)/(a+b), with a zero denominator
// yielding 0 instead of a non-finite value.
func NormalizedDifference(a, b float64) float64 {
	denom := a + b
	if denom == 0 {
		return 0
	}
	return (a - b) / denom
}

// enhancedVegetation is the atmosphere-corrected EVI formula.
func enhancedVegetation(nir, red, green float64) float64 {
	denom := nir + 6*red - 7.5*green + 1
	if denom == 0 {
		return 0
	}
	return 2.5 * (nir - red) / denom
}

// EstimateIndices produces a deterministic placeholder index set for the
// explicit degraded mode. The seed (typically the catalog item ID) keeps
// repeated calls stable. Results carry ModeEstimated and must never be
// substituted for a measured result implicitly.
func EstimateIndices(seed string) Indices {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	s := h.Sum64()

	// Spread the hash over four moderate, plausible values in [-0.2, 0.6).
	pick := func(shift uint) float64 {
		return float64((s>>shift)&0xff)/255.0*0.8 - 0.2
	}
	return Indices{
		Vegetation: pick(0),
		BuiltUp:    pick(8),
		Water:      pick(16),
		Moisture:   pick(24),
	}
}
