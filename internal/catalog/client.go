package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gostac "github.com/planetlabs/go-stac"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/landsight/landsight-cli/internal/geo"
	"github.com/landsight/landsight-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://earth-search.aws.element84.com/v1"
	defaultLimit   = 10
)

var defaultCollections = []string{"sentinel-2-l2a"}

// SearchCriteria describes one catalog query. Constructed per request,
// read-only.
type SearchCriteria struct {
	BBox          geo.BBox
	Start         *time.Time
	End           *time.Time
	MaxCloudCover float64
	Limit         int
}

// Client searches the remote catalog.
type Client interface {
	Search(ctx context.Context, criteria SearchCriteria) ([]Item, error)
}

// UnavailableError means the catalog was unreachable or kept erroring
// after the retry budget was spent. The caller can retry later or widen
// the criteria.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("catalog unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default catalog endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithCollections overrides the collections searched.
func WithCollections(collections []string) Option {
	return func(c *httpClient) {
		if len(collections) > 0 {
			c.collections = collections
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) {
		c.retry = p
	}
}

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

type httpClient struct {
	baseURL     string
	collections []string
	http        *http.Client
	limiter     *rate.Limiter
	retry       resilience.Policy
}

// NewClient creates a STAC search client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:     defaultBaseURL,
		collections: defaultCollections,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(5, 5),
		retry: resilience.Policy{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			OnRetry:      resilience.RetryLogger("stac", "search"),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// searchRequest is the catalog's POST /search wire shape.
type searchRequest struct {
	Collections []string       `json:"collections"`
	BBox        []float64      `json:"bbox"`
	Datetime    string         `json:"datetime,omitempty"`
	Limit       int            `json:"limit"`
	Query       map[string]any `json:"query,omitempty"`
}

type searchResponse struct {
	Type     string         `json:"type"`
	Features []*gostac.Item `json:"features"`
}

// Search queries the catalog and re-filters the results by cloud cover.
// The local filter is a defensive double-check on the catalog's own query
// semantics: items without cloud-cover data are excluded.
func (c *httpClient) Search(ctx context.Context, criteria SearchCriteria) ([]Item, error) {
	limit := criteria.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	req := searchRequest{
		Collections: c.collections,
		BBox:        criteria.BBox.Slice(),
		Datetime:    geo.FormatInterval(criteria.Start, criteria.End),
		Limit:       limit,
		Query: map[string]any{
			"eo:cloud_cover": map[string]any{"lt": criteria.MaxCloudCover},
		},
	}

	features, err := resilience.Do(ctx, c.retry, func(ctx context.Context) ([]*gostac.Item, error) {
		return c.doSearch(ctx, req)
	})
	if err != nil {
		// Caller abandonment is not a catalog outage.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &UnavailableError{Err: err}
	}

	items := make([]Item, 0, len(features))
	for _, f := range features {
		if f == nil {
			continue
		}
		it := fromSTAC(f)
		if it.CloudCover == nil || *it.CloudCover >= criteria.MaxCloudCover {
			continue
		}
		items = append(items, it)
	}

	zap.L().Debug("catalog search complete",
		zap.Int("returned", len(features)),
		zap.Int("qualifying", len(items)),
		zap.Float64("max_cloud_cover", criteria.MaxCloudCover),
	)

	return items, nil
}

func (c *httpClient) doSearch(ctx context.Context, req searchRequest) ([]*gostac.Item, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "catalog: rate limiter wait")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: marshal search request")
	}

	endpoint, err := url.JoinPath(c.baseURL, "search")
	if err != nil {
		return nil, eris.Wrap(err, "catalog: build search URL")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "catalog: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/geo+json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("catalog: unexpected status %d: %s", resp.StatusCode, truncate(respBody, 200))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal response")
	}

	return result.Features, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
