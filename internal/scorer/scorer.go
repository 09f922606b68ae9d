package scorer

import (
	"fmt"
	"math"

	"github.com/landsight/landsight-cli/internal/spectral"
)

// Assessment is the scoring outcome for one analysis.
type Assessment struct {
	Score           float64  `json:"score"`
	Recommendations []string `json:"recommendations"`
	Warnings        []string `json:"warnings"`
}

// Assess scores the site for the project type. The score starts at 50,
// shifts by a fixed per-type linear combination of the indices, and is
// clamped to [0, 100]. Recommendations and warnings follow fixed rule
// cascades; their order is part of the contract.
func Assess(idx spectral.Indices, projectType ProjectType, cloudCover float64) Assessment {
	score := 50.0

	switch projectType {
	case Agricultural:
		score += 30*idx.Vegetation + 20*idx.Moisture - 10*math.Abs(idx.BuiltUp)
	case Residential, Commercial:
		score += 15*idx.BuiltUp + 10*(1-math.Abs(idx.Vegetation)) - 10*idx.Water
	case Industrial:
		score += 20*idx.BuiltUp - 15*idx.Water
	case Mixed:
		score += 10*idx.Vegetation + 10*idx.BuiltUp + 10*idx.Moisture
	}

	score = clamp(score, 0, 100)

	return Assessment{
		Score:           score,
		Recommendations: recommendations(score, idx, projectType),
		Warnings:        warnings(idx, cloudCover),
	}
}

// Confidence derives a data-confidence percentage from the image's cloud
// cover: max(0, 100 - 2*cloudCover).
func Confidence(cloudCover float64) float64 {
	return math.Max(0, 100-2*cloudCover)
}

func recommendations(score float64, idx spectral.Indices, projectType ProjectType) []string {
	recs := make([]string, 0, 5)

	switch {
	case score >= 70:
		recs = append(recs, fmt.Sprintf("Excellent suitability for %s development", projectType))
	case score >= 50:
		recs = append(recs, fmt.Sprintf("Good suitability for %s development with minor preparation", projectType))
	default:
		recs = append(recs, "Site needs significant preparation before development")
	}

	if projectType != Agricultural && idx.Vegetation > 0.5 {
		recs = append(recs, "High vegetation cover: land clearing will be required before construction")
	}
	if idx.BuiltUp > 0.3 {
		recs = append(recs, "Existing development in the area: well suited for infill development")
	}
	if idx.Water > 0.2 {
		recs = append(recs, "Significant water presence: assess drainage and flood mitigation needs")
	}
	if idx.Moisture < 0 {
		recs = append(recs, "Low soil moisture: irrigation infrastructure may be required")
	}

	return recs
}

func warnings(idx spectral.Indices, cloudCover float64) []string {
	warns := make([]string, 0, 3)

	if cloudCover > 20 {
		warns = append(warns, fmt.Sprintf("Image cloud cover is %.0f%%: analysis reliability is reduced", cloudCover))
	}
	if idx.Water > 0.4 {
		warns = append(warns, "High water index: site may be flood-prone")
	}
	if idx.BuiltUp > 0.5 {
		warns = append(warns, "Dense existing development: zoning and permit constraints likely")
	}

	return warns
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
