package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landsight/landsight-cli/internal/catalog"
	"github.com/landsight/landsight-cli/internal/geo"
	"github.com/landsight/landsight-cli/internal/raster"
	"github.com/landsight/landsight-cli/internal/scorer"
	"github.com/landsight/landsight-cli/internal/spectral"
)

// periodCatalog returns one item per searched year, or nothing for years
// listed as gaps. Item IDs embed the year so the band fakes can vary
// values over time.
type periodCatalog struct {
	mu    sync.Mutex
	gaps  map[int]bool
	err   error
	calls int
}

func (p *periodCatalog) Search(_ context.Context, c catalog.SearchCriteria) ([]catalog.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	if p.err != nil {
		return nil, p.err
	}
	if c.End == nil {
		return nil, nil
	}
	year := c.End.Year()
	if p.gaps[year] {
		return nil, nil
	}
	return []catalog.Item{testItem(fmt.Sprintf("y%d", year), 5, *c.End)}, nil
}

// yearBands grows the SWIR value year over year so the built-up index
// rises across periods.
type yearBands struct{}

func (yearBands) FetchBand(_ context.Context, url string, _ *geo.BBox) ([]float64, error) {
	year := time.Now().UTC().Year()
	for y := year - 10; y <= year; y++ {
		if strings.Contains(url, fmt.Sprintf("/y%d/", y)) {
			year = y
			break
		}
	}

	swir := 1000.0 + 300*float64(year-2020)
	switch {
	case strings.Contains(url, "B04"):
		return []float64{1000, 1000}, nil
	case strings.Contains(url, "B03"):
		return []float64{800, 800}, nil
	case strings.Contains(url, "B08"):
		return []float64{4000, 4000}, nil
	default:
		return []float64{swir, swir}, nil
	}
}

func TestAnalyzeGrowthTrends(t *testing.T) {
	a := NewAnalyzer(&periodCatalog{}, yearBands{}, nil)

	tr, err := a.AnalyzeGrowthTrends(context.Background(), validRequest(), 4)
	require.NoError(t, err)

	assert.Len(t, tr.Periods, 4)
	assert.Equal(t, 4, tr.PeriodsAnalyzed)
	assert.Zero(t, tr.PeriodsMissing)

	// Periods are ordered oldest first and cover consecutive years.
	for i := 1; i < len(tr.Periods); i++ {
		assert.True(t, tr.Periods[i].End.After(tr.Periods[i-1].End))
	}

	// SWIR rises 300 per year, so built-up must have grown.
	assert.Positive(t, tr.BuiltUpDelta)
	assert.NotEmpty(t, tr.Growth)
	assert.NotEqual(t, "stable", tr.Growth)
}

func TestAnalyzeGrowthTrendsWithGap(t *testing.T) {
	gapYear := time.Now().UTC().Year() - 1
	cat := &periodCatalog{gaps: map[int]bool{gapYear: true}}
	a := NewAnalyzer(cat, yearBands{}, nil)

	tr, err := a.AnalyzeGrowthTrends(context.Background(), validRequest(), 3)
	require.NoError(t, err)

	assert.Equal(t, 2, tr.PeriodsAnalyzed)
	assert.Equal(t, 1, tr.PeriodsMissing)

	var sawGap bool
	for _, p := range tr.Periods {
		if p.Missing {
			sawGap = true
			assert.Nil(t, p.Result)
		} else {
			require.NotNil(t, p.Result)
			assert.Equal(t, spectral.ModeMeasured, p.Result.Mode)
		}
	}
	assert.True(t, sawGap)
}

func TestAnalyzeGrowthTrendsAllPeriodsMissing(t *testing.T) {
	year := time.Now().UTC().Year()
	cat := &periodCatalog{gaps: map[int]bool{year: true, year - 1: true, year - 2: true}}
	a := NewAnalyzer(cat, yearBands{}, nil)

	_, err := a.AnalyzeGrowthTrends(context.Background(), validRequest(), 3)
	var noImg *NoImageryError
	assert.ErrorAs(t, err, &noImg)
}

func TestAnalyzeGrowthTrendsCatalogOutagePropagates(t *testing.T) {
	// An unreachable catalog is not a data gap: the caller should see the
	// outage and retry later, not be told to widen the criteria.
	cat := &periodCatalog{err: &catalog.UnavailableError{Err: errors.New("connect: connection refused")}}
	a := NewAnalyzer(cat, yearBands{}, nil)

	_, err := a.AnalyzeGrowthTrends(context.Background(), validRequest(), 3)
	require.Error(t, err)

	var unavailable *catalog.UnavailableError
	assert.ErrorAs(t, err, &unavailable)
	var noImg *NoImageryError
	assert.False(t, errors.As(err, &noImg))
}

func TestAnalyzeGrowthTrendsRasterFailurePropagates(t *testing.T) {
	cat := &periodCatalog{}
	failing := failingBands{err: &raster.FetchError{URL: "https://data.example.com/x.tif", Err: errors.New("curl error")}}

	a := NewAnalyzer(cat, failing, nil)
	_, err := a.AnalyzeGrowthTrends(context.Background(), validRequest(), 2)
	require.Error(t, err)

	var fetchErr *raster.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

// failingBands fails every fetch with a fixed error.
type failingBands struct{ err error }

func (f failingBands) FetchBand(context.Context, string, *geo.BBox) ([]float64, error) {
	return nil, f.err
}

func TestAnalyzeGrowthTrendsValidation(t *testing.T) {
	a := NewAnalyzer(&periodCatalog{}, yearBands{}, nil)
	var invalid *InvalidInputError

	_, err := a.AnalyzeGrowthTrends(context.Background(), validRequest(), 1)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "years", invalid.Field)

	_, err = a.AnalyzeGrowthTrends(context.Background(), Request{ProjectType: scorer.Mixed}, 3)
	assert.ErrorAs(t, err, &invalid)
}

func TestClassifyGrowth(t *testing.T) {
	tests := []struct {
		builtUp, veg float64
		want         string
	}{
		{0.2, 0, "rapid urban growth"},
		{0.07, 0, "moderate urban growth"},
		{0.02, 0, "slow urban growth"},
		{0.0, -0.2, "vegetation loss without development"},
		{-0.1, 0, "declining development"},
		{0.0, 0.0, "stable"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyGrowth(tt.builtUp, tt.veg), "builtUp=%v veg=%v", tt.builtUp, tt.veg)
	}
}
