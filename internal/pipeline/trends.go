package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/landsight/landsight-cli/internal/spectral"
)

// trendParallelism bounds concurrent per-period analyses. Band fetches
// inside each analysis stay sequential, so total raster connections are
// bounded by this value.
const trendParallelism = 3

// PeriodSnapshot is one year's analysis within a trend window.
type PeriodSnapshot struct {
	Year    int        `json:"year"`
	Start   time.Time  `json:"start"`
	End     time.Time  `json:"end"`
	Missing bool       `json:"missing"`
	Result  *Result    `json:"result,omitempty"`
}

// TrendsResult compares the earliest and latest analyzable periods.
type TrendsResult struct {
	AnalysisID      uuid.UUID        `json:"analysis_id"`
	Periods         []PeriodSnapshot `json:"periods"`
	BuiltUpDelta    float64          `json:"built_up_delta"`
	VegetationDelta float64          `json:"vegetation_delta"`
	Growth          string           `json:"growth"`
	PeriodsAnalyzed int              `json:"periods_analyzed"`
	PeriodsMissing  int              `json:"periods_missing"`
}

// AnalyzeGrowthTrends splits the last `years` years into yearly periods,
// analyzes each, and reports built-up and vegetation deltas between the
// first and last period with imagery. Periods with no qualifying imagery
// are reported as gaps; the call fails only when every period does.
func (a *Analyzer) AnalyzeGrowthTrends(ctx context.Context, req Request, years int) (*TrendsResult, error) {
	if years < 2 {
		return nil, &InvalidInputError{Field: "years", Reason: "at least 2 years are needed to compare trends"}
	}
	if _, err := req.resolveBBox(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snapshots := make([]PeriodSnapshot, years)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trendParallelism)

	for i := 0; i < years; i++ {
		end := now.AddDate(-(years - 1 - i), 0, 0)
		start := end.AddDate(-1, 0, 0)
		snapshots[i] = PeriodSnapshot{Year: end.Year(), Start: start, End: end}

		g.Go(func() error {
			periodReq := req
			periodReq.Start = &start
			periodReq.End = &end
			periodReq.IncludeViz = false

			res, err := a.AnalyzeSite(gctx, periodReq)
			if err != nil {
				if !isPeriodGap(err) {
					return err
				}
				zap.L().Warn("trend period has no usable imagery",
					zap.Int("year", snapshots[i].Year), zap.Error(err))
				snapshots[i].Missing = true
				return nil
			}
			snapshots[i].Result = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tr := &TrendsResult{AnalysisID: uuid.New(), Periods: snapshots}

	var first, last *Result
	for i := range snapshots {
		if snapshots[i].Missing {
			tr.PeriodsMissing++
			continue
		}
		tr.PeriodsAnalyzed++
		if first == nil {
			first = snapshots[i].Result
		}
		last = snapshots[i].Result
	}
	if tr.PeriodsAnalyzed == 0 {
		return nil, &NoImageryError{MaxCloudCover: req.maxCloud()}
	}

	tr.BuiltUpDelta = last.Indices.BuiltUp.Value - first.Indices.BuiltUp.Value
	tr.VegetationDelta = last.Indices.Vegetation.Value - first.Indices.Vegetation.Value
	tr.Growth = classifyGrowth(tr.BuiltUpDelta, tr.VegetationDelta)

	return tr, nil
}

// isPeriodGap reports whether a per-period failure just means that year
// has no usable imagery. Only those become gaps; a catalog outage, a
// raster fetch failure, or bad input affects every period the same way
// and must surface as itself so the caller picks the right recovery.
func isPeriodGap(err error) bool {
	var noImg *NoImageryError
	var missingBand *spectral.MissingBandError
	return errors.As(err, &noImg) || errors.As(err, &missingBand)
}

// classifyGrowth interprets the built-up delta, with vegetation loss as a
// secondary signal when development stays flat.
func classifyGrowth(builtUpDelta, vegetationDelta float64) string {
	switch {
	case builtUpDelta > 0.1:
		return "rapid urban growth"
	case builtUpDelta > 0.05:
		return "moderate urban growth"
	case builtUpDelta > 0.01:
		return "slow urban growth"
	case vegetationDelta < -0.1:
		return "vegetation loss without development"
	case builtUpDelta < -0.05:
		return "declining development"
	default:
		return "stable"
	}
}
