// Package nominatim provides a rate-limited reverse-geocoding client for the
// OpenStreetMap Nominatim service.
package nominatim

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/brandonbuckley/uber-top100-POIs/internal/resilience"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// DefaultInterval is the minimum spacing between outbound requests, per the
// Nominatim usage policy (at most one request per second, plus headroom).
const DefaultInterval = 1500 * time.Millisecond

// Client reverse-geocodes coordinate pairs.
type Client interface {
	// Reverse resolves a lat/lon to a structured place description.
	Reverse(ctx context.Context, lat, lon float64) (*Result, error)
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the Nominatim endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithUserAgent sets the User-Agent header. Nominatim rejects requests
// without an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *client) {
		c.userAgent = ua
	}
}

// WithLimiter replaces the request limiter. Tests inject
// rate.NewLimiter(rate.Inf, 1) for zero-delay runs.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *client) {
		c.limiter = l
	}
}

// WithInterval sets the minimum spacing between consecutive requests.
func WithInterval(d time.Duration) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *client) {
		c.retry = cfg
	}
}

// WithZoom sets the reverse-geocoding zoom level (18 = building detail).
func WithZoom(zoom int) Option {
	return func(c *client) {
		c.zoom = zoom
	}
}

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	zoom       int
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
}

// NewClient creates a reverse-geocoding Client with the given options.
// Requests are strictly sequential: the limiter admits one request per
// interval with burst 1, which is what guarantees the spacing invariant.
func NewClient(opts ...Option) Client {
	c := &client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  "poi-parking-identifier/1.0",
		zoom:       18,
		limiter:    rate.NewLimiter(rate.Every(DefaultInterval), 1),
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// reverseResponse is the jsonv2 payload from /reverse. Nominatim reports
// "unable to geocode" as a 200 with an error field.
type reverseResponse struct {
	OSMID       int64   `json:"osm_id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Address     Address `json:"address"`
	Error       string  `json:"error"`
}

// Reverse implements Client. Transient failures (network errors, 429, 5xx)
// are retried with a fixed backoff; the limiter is re-awaited before every
// attempt so retries keep the spacing invariant too.
func (c *client) Reverse(ctx context.Context, lat, lon float64) (*Result, error) {
	retryCfg := c.retry
	if retryCfg.OnRetry == nil {
		retryCfg.OnRetry = resilience.RetryLogger("nominatim", "reverse")
	}

	return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*Result, error) {
		return c.reverseOnce(ctx, lat, lon)
	})
}

func (c *client) reverseOnce(ctx context.Context, lat, lon float64) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nominatim: rate limit wait")
	}

	params := url.Values{
		"format":         {"jsonv2"},
		"lat":            {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(lon, 'f', -1, 64)},
		"zoom":           {strconv.Itoa(c.zoom)},
		"addressdetails": {"1"},
	}

	reqURL := c.baseURL + "/reverse?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "nominatim: request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("nominatim: returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "nominatim: read body"), 0)
	}

	var rr reverseResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, eris.Wrap(err, "nominatim: parse response")
	}

	// "Unable to geocode" — nothing at this coordinate. Not an error, just
	// unmatched.
	if rr.Error != "" {
		return &Result{Matched: false}, nil
	}

	return &Result{
		Name:        rr.Name,
		DisplayName: rr.DisplayName,
		Category:    rr.Category,
		PlaceType:   rr.Type,
		OSMID:       rr.OSMID,
		Address:     rr.Address,
		Matched:     true,
	}, nil
}
