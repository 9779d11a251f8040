// Package census is a client for the US Census Bureau APIs: the Data API
// (api.census.gov), the Census Geocoder and TIGERweb. It answers population
// queries for a coordinate and radius.
package census

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Defaults for the public Census endpoints.
const (
	DefaultDataURL            = "https://api.census.gov/data"
	DefaultDataset            = "2020/dec/pl"
	DefaultPopulationVariable = "P1_001N"
	DefaultGeocoderURL        = "https://geocoding.geo.census.gov/geocoder/geographies/coordinates"
	DefaultBenchmark          = "Public_AR_Current"
	DefaultVintage            = "Census2020_Current"
	DefaultTigerWebURL        = "https://tigerweb.geo.census.gov/arcgis/rest/services/TIGERweb/tigerWMS_Census2020/MapServer"
	DefaultTigerWebLayer      = 10 // Census Block Groups
	DefaultUserAgent          = "census-cli/1.0"
)

// Service names used in errors and logs.
const (
	serviceData     = "data api"
	serviceGeocoder = "geocoder"
	serviceTigerWeb = "tigerweb"
)

const maxErrorBody = 200

// Option configures the Client.
type Option func(*Client)

// WithDataURL overrides the Data API base URL.
func WithDataURL(u string) Option {
	return func(c *Client) { c.dataURL = strings.TrimRight(u, "/") }
}

// WithDataset sets the dataset path (e.g. "2020/dec/pl") used for population lookups.
func WithDataset(ds string) Option {
	return func(c *Client) { c.dataset = strings.Trim(ds, "/") }
}

// WithPopulationVariable sets the variable summed for population lookups.
func WithPopulationVariable(v string) Option {
	return func(c *Client) { c.variable = v }
}

// WithGeocoderURL overrides the geocoder geographies/coordinates URL.
func WithGeocoderURL(u string) Option {
	return func(c *Client) { c.geocoderURL = u }
}

// WithBenchmark sets the geocoder benchmark.
func WithBenchmark(b string) Option {
	return func(c *Client) { c.benchmark = b }
}

// WithVintage sets the geocoder vintage.
func WithVintage(v string) Option {
	return func(c *Client) { c.vintage = v }
}

// WithTigerWeb overrides the TIGERweb MapServer URL and block group layer.
func WithTigerWeb(u string, layer int) Option {
	return func(c *Client) {
		c.tigerWebURL = strings.TrimRight(u, "/")
		c.tigerWebLayer = layer
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit sets the requests-per-second limit across all Census calls.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// Client talks to the Census APIs. Calls are synchronous and never retried.
type Client struct {
	apiKey string

	dataURL       string
	dataset       string
	variable      string
	geocoderURL   string
	benchmark     string
	vintage       string
	tigerWebURL   string
	tigerWebLayer int
	userAgent     string
	timeout       time.Duration

	httpClient *http.Client
	rest       *resty.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client. The API key is required.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, eris.Wrap(ErrConfiguration, "CENSUS_API_KEY is not set")
	}

	c := &Client{
		apiKey:        apiKey,
		dataURL:       DefaultDataURL,
		dataset:       DefaultDataset,
		variable:      DefaultPopulationVariable,
		geocoderURL:   DefaultGeocoderURL,
		benchmark:     DefaultBenchmark,
		vintage:       DefaultVintage,
		tigerWebURL:   DefaultTigerWebURL,
		tigerWebLayer: DefaultTigerWebLayer,
		userAgent:     DefaultUserAgent,
		timeout:       30 * time.Second,
		limiter:       rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		c.rest = resty.NewWithClient(c.httpClient)
	} else {
		c.rest = resty.New()
	}
	c.rest.
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", c.userAgent)

	return c, nil
}

// Dataset returns the dataset used for population lookups.
func (c *Client) Dataset() string { return c.dataset }

// PopulationVariable returns the variable summed for population lookups.
func (c *Client) PopulationVariable() string { return c.variable }

// get issues one GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, service, rawURL string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrapf(err, "census: %s rate limit", service)
	}

	start := time.Now()
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrapf(ctx.Err(), "census: %s request", service)
		}
		return nil, eris.Wrapf(ErrNetwork, "%s request: %v", service, err)
	}

	zap.L().Debug("census request",
		zap.String("service", service),
		zap.String("path", requestPath(rawURL)),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &APIError{
			Service:    service,
			StatusCode: resp.StatusCode(),
			Message:    truncate(strings.TrimSpace(string(resp.Body())), maxErrorBody),
		}
	}
	return resp.Body(), nil
}

// requestPath strips the query string so the API key never reaches the logs.
func requestPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
