package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/landsight/landsight-cli/internal/catalog"
	"github.com/landsight/landsight-cli/internal/geo"
	"github.com/landsight/landsight-cli/internal/pipeline"
	"github.com/landsight/landsight-cli/internal/raster"
	"github.com/landsight/landsight-cli/internal/resilience"
	"github.com/landsight/landsight-cli/internal/viz"
)

// newCatalogClient builds the search client from configuration.
func newCatalogClient() catalog.Client {
	return catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.BaseURL),
		catalog.WithCollections(cfg.Catalog.Collections),
		catalog.WithRateLimit(cfg.Catalog.RequestsPerSec, int(cfg.Catalog.RequestsPerSec)),
		catalog.WithRetryPolicy(resilience.Policy{
			MaxAttempts:  cfg.Catalog.MaxRetries,
			InitialDelay: time.Second,
			OnRetry:      resilience.RetryLogger("stac", "search"),
		}),
	)
}

// newAnalyzer wires the full pipeline from configuration.
func newAnalyzer() *pipeline.Analyzer {
	fetcher := raster.NewFetcher(raster.Config{
		MaxAttempts:    cfg.Raster.MaxAttempts,
		InitialBackoff: time.Duration(cfg.Raster.InitialBackoffSecs) * time.Second,
		AttemptTimeout: time.Duration(cfg.Raster.AttemptTimeoutSecs) * time.Second,
		MaxOverviewDim: cfg.Raster.MaxOverviewDim,
	})
	return pipeline.NewAnalyzer(newCatalogClient(), fetcher, viz.NewLocator(cfg.Tiles.BaseURL))
}

// parseBBox parses a "west,south,east,north" flag value.
func parseBBox(s string) (geo.BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.BBox{}, eris.Errorf("bbox must be west,south,east,north, got %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.BBox{}, eris.Wrapf(err, "bbox component %d", i+1)
		}
		vals[i] = v
	}
	return geo.FromSlice(vals)
}

// parseDate parses a YYYY-MM-DD flag value; empty means unset.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, eris.Wrapf(err, "date %q (want YYYY-MM-DD)", s)
	}
	return &t, nil
}
