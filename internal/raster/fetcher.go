package raster

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/landsight/landsight-cli/internal/geo"
	"github.com/landsight/landsight-cli/internal/resilience"
)

// FetchError means a band read failed after the retry budget was spent.
// It carries the last underlying error.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("raster fetch failed for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config tunes the fetcher. Zero values take the documented defaults.
type Config struct {
	// MaxAttempts per band. Default: 3.
	MaxAttempts int
	// InitialBackoff before the first retry, doubling each attempt
	// (2s, 4s, 8s). Default: 2s.
	InitialBackoff time.Duration
	// AttemptTimeout bounds each read attempt. Default: 120s.
	AttemptTimeout time.Duration
	// MaxOverviewDim is the preferred ceiling on the read resolution's
	// larger side when overviews are available. Default: 1024.
	MaxOverviewDim int
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 2 * time.Second
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 120 * time.Second
	}
	if c.MaxOverviewDim <= 0 {
		c.MaxOverviewDim = 1024
	}
	return c
}

var registerOnce sync.Once

// Fetcher reads single bands from remote COGs through GDAL's virtual
// filesystem, one band per call. Callers fetch multiple bands as
// independent sequential calls to bound peak connections and memory.
type Fetcher struct {
	cfg Config
}

// NewFetcher creates a band fetcher.
func NewFetcher(cfg Config) *Fetcher {
	registerOnce.Do(godal.RegisterAll)
	return &Fetcher{cfg: cfg.withDefaults()}
}

// FetchBand reads one band's pixel values for the geographic window,
// in row-major order. A nil window reads the full extent. Transient
// failures are retried with exponential backoff; exhaustion surfaces a
// FetchError with the last cause.
func (f *Fetcher) FetchBand(ctx context.Context, rasterURL string, window *geo.BBox) ([]float64, error) {
	policy := resilience.Policy{
		MaxAttempts:    f.cfg.MaxAttempts,
		InitialDelay:   f.cfg.InitialBackoff,
		AttemptTimeout: f.cfg.AttemptTimeout,
		Retryable:      func(error) bool { return true },
		OnRetry:        resilience.RetryLogger("raster", "fetch_band"),
	}

	pixels, err := resilience.Do(ctx, policy, func(ctx context.Context) ([]float64, error) {
		return f.readOnce(ctx, rasterURL, window)
	})
	if err != nil {
		return nil, &FetchError{URL: rasterURL, Err: err}
	}
	return pixels, nil
}

type readResult struct {
	pixels []float64
	err    error
}

// readOnce performs one attempt, bounded by the attempt context. GDAL
// reads cannot be interrupted mid-call, so the read runs in a goroutine
// and the attempt abandons it on deadline.
func (f *Fetcher) readOnce(ctx context.Context, rasterURL string, window *geo.BBox) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan readResult, 1)
	go func() {
		px, err := f.readBand(rasterURL, window)
		ch <- readResult{pixels: px, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.pixels, r.err
	}
}

func (f *Fetcher) readBand(rasterURL string, window *geo.BBox) ([]float64, error) {
	ds, err := godal.Open(vsiPath(rasterURL))
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", rasterURL)
	}
	defer ds.Close() //nolint:errcheck

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, eris.Errorf("raster: no bands in %s", rasterURL)
	}
	band := bands[0]
	full := band.Structure()

	level, levelW, levelH := f.selectLevel(band)

	win := FullWindow(levelW, levelH)
	if window != nil {
		if resolved, ok := f.resolveGeoWindow(ds, *window, full.SizeX, full.SizeY, levelW, levelH); ok {
			win = resolved
		}
	}

	data := make([]float64, win.Width*win.Height)
	if err := level.Read(win.X, win.Y, data, win.Width, win.Height); err != nil {
		return nil, eris.Wrapf(err, "raster: read window %+v from %s", win, rasterURL)
	}

	zap.L().Debug("band read complete",
		zap.String("url", rasterURL),
		zap.Int("width", win.Width),
		zap.Int("height", win.Height),
		zap.Bool("overview", levelW != full.SizeX),
	)

	return data, nil
}

// selectLevel picks the resolution level to read: an overview when any
// exists, full resolution otherwise.
func (f *Fetcher) selectLevel(band godal.Band) (godal.Band, int, int) {
	full := band.Structure()
	overviews := band.Overviews()

	dims := make([]dim, len(overviews))
	for i, ov := range overviews {
		s := ov.Structure()
		dims[i] = dim{width: s.SizeX, height: s.SizeY}
	}

	idx := pickLevel(dims, f.cfg.MaxOverviewDim)
	if idx < 0 {
		return band, full.SizeX, full.SizeY
	}
	return overviews[idx], dims[idx].width, dims[idx].height
}

// resolveGeoWindow turns the geographic window into a pixel window at the
// chosen level. Any failure falls back to the full extent rather than
// failing the fetch.
func (f *Fetcher) resolveGeoWindow(ds *godal.Dataset, window geo.BBox, fullW, fullH, levelW, levelH int) (Window, bool) {
	rasterBBox, err := datasetBBox(ds, fullW, fullH)
	if err != nil {
		zap.L().Warn("raster: window transform failed, reading full extent", zap.Error(err))
		return Window{}, false
	}

	win, err := ResolveWindow(window, rasterBBox, fullW, fullH)
	if err != nil {
		zap.L().Warn("raster: window transform failed, reading full extent", zap.Error(err))
		return Window{}, false
	}

	return win.scale(fullW, fullH, levelW, levelH), true
}

// datasetBBox derives the raster's geographic bounds from its
// geotransform. Assumes a north-up raster (no rotation terms).
func datasetBBox(ds *godal.Dataset, width, height int) (geo.BBox, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return geo.BBox{}, eris.Wrap(err, "raster: geotransform")
	}

	west := gt[0]
	north := gt[3]
	east := west + gt[1]*float64(width)
	south := north + gt[5]*float64(height)

	b := geo.BBox{West: west, South: south, East: east, North: north}
	if b.East <= b.West || b.North <= b.South {
		return geo.BBox{}, eris.Errorf("raster: unusable geotransform %v", gt)
	}
	return b, nil
}

// vsiPath maps a raster URL onto GDAL's virtual filesystem.
func vsiPath(rasterURL string) string {
	switch {
	case strings.HasPrefix(rasterURL, "http://"), strings.HasPrefix(rasterURL, "https://"):
		return "/vsicurl/" + rasterURL
	case strings.HasPrefix(rasterURL, "s3://"):
		return "/vsis3/" + strings.TrimPrefix(rasterURL, "s3://")
	default:
		return rasterURL
	}
}
