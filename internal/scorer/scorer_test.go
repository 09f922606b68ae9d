package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landsight/landsight-cli/internal/spectral"
)

func TestParseProjectType(t *testing.T) {
	for _, valid := range []string{"residential", "commercial", "industrial", "mixed", "agricultural"} {
		pt, err := ParseProjectType(valid)
		require.NoError(t, err)
		assert.Equal(t, ProjectType(valid), pt)
	}

	_, err := ParseProjectType("retail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retail")
}

func TestAssessAgricultural(t *testing.T) {
	idx := spectral.Indices{Vegetation: 0.6, Moisture: 0.2, BuiltUp: -0.1}
	a := Assess(idx, Agricultural, 5)

	// 50 + 30*0.6 + 20*0.2 - 10*0.1 = 71
	assert.InDelta(t, 71.0, a.Score, 1e-9)
	require.NotEmpty(t, a.Recommendations)
	assert.Contains(t, a.Recommendations[0], "Excellent suitability for agricultural")
	assert.Empty(t, a.Warnings)
}

func TestAssessResidentialAndCommercialShareWeights(t *testing.T) {
	idx := spectral.Indices{Vegetation: -0.2, BuiltUp: 0.4, Water: 0.1}

	res := Assess(idx, Residential, 0)
	com := Assess(idx, Commercial, 0)
	assert.Equal(t, res.Score, com.Score)

	// 50 + 15*0.4 + 10*(1-0.2) - 10*0.1 = 63
	assert.InDelta(t, 63.0, res.Score, 1e-9)
}

func TestAssessIndustrial(t *testing.T) {
	idx := spectral.Indices{BuiltUp: 0.2, Water: 0.3}
	a := Assess(idx, Industrial, 0)

	// 50 + 20*0.2 - 15*0.3 = 49.5
	assert.InDelta(t, 49.5, a.Score, 1e-9)
	assert.Contains(t, a.Recommendations[0], "needs significant preparation")
}

func TestAssessMixed(t *testing.T) {
	idx := spectral.Indices{Vegetation: 0.3, BuiltUp: 0.1, Moisture: 0.2}
	a := Assess(idx, Mixed, 0)

	// 50 + 10*0.3 + 10*0.1 + 10*0.2 = 56
	assert.InDelta(t, 56.0, a.Score, 1e-9)
}

func TestAssessScoreClamped(t *testing.T) {
	high := spectral.Indices{Vegetation: 1, Moisture: 1, BuiltUp: 0}
	a := Assess(high, Agricultural, 0)
	assert.Equal(t, 100.0, a.Score)

	low := spectral.Indices{Vegetation: -1, Moisture: -1, BuiltUp: 1}
	a = Assess(low, Agricultural, 0)
	assert.Equal(t, 0.0, a.Score)

	extreme := spectral.Indices{Vegetation: 1, BuiltUp: 1, Water: -1, Moisture: 1}
	for _, pt := range []ProjectType{Residential, Commercial, Industrial, Mixed, Agricultural} {
		a = Assess(extreme, pt, 0)
		assert.GreaterOrEqual(t, a.Score, 0.0, "type %s", pt)
		assert.LessOrEqual(t, a.Score, 100.0, "type %s", pt)
	}
}

func TestRecommendationCascadeOrder(t *testing.T) {
	idx := spectral.Indices{Vegetation: 0.6, BuiltUp: 0.4, Water: 0.3, Moisture: -0.1}
	a := Assess(idx, Residential, 0)

	require.Len(t, a.Recommendations, 5)
	assert.Contains(t, a.Recommendations[0], "suitability")
	assert.Contains(t, a.Recommendations[1], "land clearing")
	assert.Contains(t, a.Recommendations[2], "infill")
	assert.Contains(t, a.Recommendations[3], "drainage")
	assert.Contains(t, a.Recommendations[4], "irrigation")
}

func TestRecommendationVegetationClearingSkippedForAgricultural(t *testing.T) {
	idx := spectral.Indices{Vegetation: 0.8}
	a := Assess(idx, Agricultural, 0)

	for _, r := range a.Recommendations {
		assert.NotContains(t, r, "land clearing")
	}
}

func TestWarnings(t *testing.T) {
	t.Run("cloud_cover_names_percentage", func(t *testing.T) {
		a := Assess(spectral.Indices{}, Mixed, 35)
		require.Len(t, a.Warnings, 1)
		assert.Contains(t, a.Warnings[0], "35%")
	})

	t.Run("flood_and_zoning", func(t *testing.T) {
		idx := spectral.Indices{Water: 0.5, BuiltUp: 0.6}
		a := Assess(idx, Mixed, 0)
		require.Len(t, a.Warnings, 2)
		assert.Contains(t, a.Warnings[0], "flood")
		assert.Contains(t, a.Warnings[1], "zoning")
	})

	t.Run("none_at_rest", func(t *testing.T) {
		a := Assess(spectral.Indices{}, Mixed, 10)
		assert.Empty(t, a.Warnings)
	})
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 100.0, Confidence(0))
	assert.Equal(t, 90.0, Confidence(5))
	assert.Equal(t, 60.0, Confidence(20))
	assert.Equal(t, 0.0, Confidence(50))
	assert.Equal(t, 0.0, Confidence(80))
}
