package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/landsight/landsight-cli/internal/spectral"
	"github.com/landsight/landsight-cli/internal/viz"
)

// IndexReading pairs an index value with its interpretation.
type IndexReading struct {
	Value          float64 `json:"value"`
	Interpretation string  `json:"interpretation"`
}

// Readings is the per-index view of one analysis.
type Readings struct {
	Vegetation         IndexReading  `json:"vegetation"`
	BuiltUp            IndexReading  `json:"built_up"`
	Water              IndexReading  `json:"water"`
	Moisture           IndexReading  `json:"moisture"`
	EnhancedVegetation *IndexReading `json:"enhanced_vegetation,omitempty"`
}

// Metadata describes the imagery behind a result.
type Metadata struct {
	Source           string  `json:"source"`
	Resolution       float64 `json:"resolution_meters"`
	AreaSquareMeters float64 `json:"area_square_meters"`
	ImagesConsidered int     `json:"images_considered"`
}

// Result is the outcome of one site analysis. Produced once per request
// and never mutated afterwards.
type Result struct {
	AnalysisID      uuid.UUID          `json:"analysis_id"`
	Success         bool               `json:"success"`
	Score           float64            `json:"score"`
	Indices         Readings           `json:"indices"`
	Recommendations []string           `json:"recommendations"`
	Warnings        []string           `json:"warnings"`
	Confidence      float64            `json:"confidence"`
	CloudCover      float64            `json:"cloud_cover"`
	AcquisitionDate time.Time          `json:"acquisition_date"`
	Mode            spectral.Mode      `json:"mode"`
	Viz             *viz.Params        `json:"visualization,omitempty"`
	BandAverages    spectral.Averages  `json:"band_averages,omitempty"`
	Metadata        Metadata           `json:"metadata"`
}

// readingsFrom classifies each index into its interpretation.
func readingsFrom(idx spectral.Indices) Readings {
	r := Readings{
		Vegetation: IndexReading{idx.Vegetation, spectral.ClassifyVegetation(idx.Vegetation)},
		BuiltUp:    IndexReading{idx.BuiltUp, spectral.ClassifyBuiltUp(idx.BuiltUp)},
		Water:      IndexReading{idx.Water, spectral.ClassifyWater(idx.Water)},
		Moisture:   IndexReading{idx.Moisture, spectral.ClassifyMoisture(idx.Moisture)},
	}
	if idx.EnhancedVegetation != nil {
		v := *idx.EnhancedVegetation
		r.EnhancedVegetation = &IndexReading{v, spectral.ClassifyVegetation(v)}
	}
	return r
}
