// Package pipeline orchestrates one site analysis end to end: catalog
// search, band retrieval, index computation, scoring, and visualization.
// Entry points are pure functions of (ctx, request) over injected clients
// and are safe to call from a synchronous path or a queued worker.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/landsight/landsight-cli/internal/catalog"
	"github.com/landsight/landsight-cli/internal/geo"
	"github.com/landsight/landsight-cli/internal/scorer"
	"github.com/landsight/landsight-cli/internal/spectral"
	"github.com/landsight/landsight-cli/internal/viz"
)

const defaultMaxCloudCover = 10.0

// BandReader retrieves one band's pixel values for a geographic window.
type BandReader interface {
	FetchBand(ctx context.Context, rasterURL string, window *geo.BBox) ([]float64, error)
}

// Request describes one analysis. Location is either an explicit BBox or
// a center point with a radius in meters.
type Request struct {
	ProjectType scorer.ProjectType

	BBox         *geo.BBox
	Lat          float64
	Lon          float64
	RadiusMeters float64
	Buffer       bool

	Start *time.Time
	End   *time.Time
	// MaxCloudCover is the cloud-cover threshold in percent. Zero is a
	// real threshold (nothing qualifies unless fully cloud-free data is
	// reported below it); a negative value selects the default of 10.
	MaxCloudCover float64
	Limit         int

	IncludeViz bool
	Detailed   bool
	// AllowEstimated opts into deterministic placeholder indices when the
	// required bands are unavailable. Never chosen implicitly.
	AllowEstimated bool
}

// resolveBBox validates the request location and returns the analysis box.
func (r Request) resolveBBox() (geo.BBox, error) {
	var box geo.BBox
	switch {
	case r.BBox != nil:
		box = *r.BBox
	case r.RadiusMeters > 0:
		box = geo.FromPoint(r.Lat, r.Lon, r.RadiusMeters, r.Buffer)
	default:
		return geo.BBox{}, &InvalidInputError{Field: "location", Reason: "either bbox or center point with radius is required"}
	}
	if err := box.Validate(); err != nil {
		return geo.BBox{}, &InvalidInputError{Field: "bbox", Reason: err.Error()}
	}
	return box, nil
}

func (r Request) maxCloud() float64 {
	if r.MaxCloudCover < 0 {
		return defaultMaxCloudCover
	}
	return r.MaxCloudCover
}

// Analyzer wires the catalog, band reader, and visualization locator into
// the analysis entry points. Safe for concurrent use; each call is fully
// request scoped.
type Analyzer struct {
	catalog catalog.Client
	bands   BandReader
	locator *viz.Locator
}

// NewAnalyzer creates an analyzer over the given collaborators.
func NewAnalyzer(c catalog.Client, bands BandReader, locator *viz.Locator) *Analyzer {
	return &Analyzer{catalog: c, bands: bands, locator: locator}
}

// fetchOrder is the sequential band retrieval order. Required bands come
// first so a doomed analysis fails before spending time on optional ones.
var fetchOrder = []spectral.BandRole{spectral.NIR, spectral.Red, spectral.Green, spectral.SWIR1}

var requiredBands = map[spectral.BandRole]bool{spectral.NIR: true, spectral.Red: true}

// AnalyzeSite runs one full analysis. Failure surfaces as a typed error
// the caller can branch on with errors.As.
func (a *Analyzer) AnalyzeSite(ctx context.Context, req Request) (*Result, error) {
	if _, err := scorer.ParseProjectType(string(req.ProjectType)); err != nil {
		return nil, &InvalidInputError{Field: "project_type", Reason: err.Error()}
	}
	box, err := req.resolveBBox()
	if err != nil {
		return nil, err
	}
	maxCloud := req.maxCloud()

	items, err := a.catalog.Search(ctx, catalog.SearchCriteria{
		BBox:          box,
		Start:         req.Start,
		End:           req.End,
		MaxCloudCover: maxCloud,
		Limit:         req.Limit,
	})
	if err != nil {
		return nil, err
	}

	best := catalog.BestQuality(items)
	if best == nil {
		return nil, &NoImageryError{MaxCloudCover: maxCloud}
	}

	zap.L().Info("imagery selected",
		zap.String("item_id", best.ID),
		zap.String("source", best.Source),
		zap.Time("acquired", best.Acquired),
		zap.Int("candidates", len(items)),
	)

	avgs, mode, err := a.gatherBands(ctx, best, box, req.AllowEstimated)
	if err != nil {
		return nil, err
	}

	var idx spectral.Indices
	if mode == spectral.ModeEstimated {
		idx = spectral.EstimateIndices(best.ID)
	} else {
		idx, err = spectral.ComputeIndices(avgs)
		if err != nil {
			var missing *spectral.MissingBandError
			if errors.As(err, &missing) && req.AllowEstimated {
				idx = spectral.EstimateIndices(best.ID)
				mode = spectral.ModeEstimated
			} else {
				return nil, err
			}
		}
	}

	cloud := cloudOf(best)
	assessment := scorer.Assess(idx, req.ProjectType, cloud)

	result := &Result{
		AnalysisID:      uuid.New(),
		Success:         true,
		Score:           assessment.Score,
		Indices:         readingsFrom(idx),
		Recommendations: assessment.Recommendations,
		Warnings:        assessment.Warnings,
		Confidence:      scorer.Confidence(cloud),
		CloudCover:      cloud,
		AcquisitionDate: best.Acquired,
		Mode:            mode,
		Metadata: Metadata{
			Source:           best.Source,
			Resolution:       best.Resolution,
			AreaSquareMeters: box.AreaSquareMeters(),
			ImagesConsidered: len(items),
		},
	}
	if req.Detailed && mode == spectral.ModeMeasured {
		result.BandAverages = avgs
	}
	if req.IncludeViz && a.locator != nil {
		p := a.locator.Locate(best, req.ProjectType, box)
		result.Viz = &p
	}
	return result, nil
}

// gatherBands fetches the item's bands sequentially and averages each.
// A failed required band aborts the analysis unless the caller allowed
// the estimated path; a failed optional band is just skipped.
func (a *Analyzer) gatherBands(ctx context.Context, item *catalog.Item, box geo.BBox, allowEstimated bool) (spectral.Averages, spectral.Mode, error) {
	avgs := make(spectral.Averages, len(fetchOrder))

	for _, role := range fetchOrder {
		ref, ok := item.Assets[role]
		if !ok {
			continue
		}
		pixels, err := a.bands.FetchBand(ctx, ref.URL, &box)
		if err != nil {
			if ctx.Err() != nil {
				return nil, spectral.ModeMeasured, ctx.Err()
			}
			if requiredBands[role] {
				if allowEstimated {
					zap.L().Warn("required band fetch failed, using estimated indices",
						zap.String("band", string(role)), zap.Error(err))
					return nil, spectral.ModeEstimated, nil
				}
				return nil, spectral.ModeMeasured, err
			}
			zap.L().Warn("optional band fetch failed, index degrades to zero",
				zap.String("band", string(role)), zap.Error(err))
			continue
		}
		avgs[role] = spectral.Mean(pixels)
	}

	return avgs, spectral.ModeMeasured, nil
}

func cloudOf(item *catalog.Item) float64 {
	if item.CloudCover == nil {
		return 0
	}
	return *item.CloudCover
}
