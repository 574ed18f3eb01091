// Package forecast provides a tool that fetches daily weather forecasts from
// an Open-Meteo-compatible HTTP API. Coordinates and options are validated
// before any network I/O; the provider response is reshaped into a compact
// result carrying the echoed query, a units mapping, and per-variable daily
// value sequences. Request failures (non-2xx status, network errors,
// malformed or oversized bodies) are folded into the structured result so
// the orchestrator always receives a well-formed response object.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/M1ngY/sorano-ai-chat-tools-peter/pkg/tools/toolbox"
)

const (
	// DefaultBaseURL is the public Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	// DefaultTimeout bounds the single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxResponseBytes caps the response body read (10 MiB).
	DefaultMaxResponseBytes = 10 << 20

	// Source identifies the forecast provider in every result.
	Source = "open-meteo"

	// DefaultForecastDays is used when the caller does not request a day count.
	DefaultForecastDays = 3
	// MinForecastDays and MaxForecastDays bound the requested day count.
	MinForecastDays = 1
	MaxForecastDays = 7
)

// DefaultDaily is the variable set requested when the caller names none.
var DefaultDaily = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"wind_speed_10m_max",
	"weather_code",
}

var knownDaily = func() map[string]struct{} {
	m := make(map[string]struct{}, len(DefaultDaily))
	for _, name := range DefaultDaily {
		m[name] = struct{}{}
	}
	return m
}()

// Config holds the provider settings for a Client. The zero value targets
// the public Open-Meteo API with a 30 second timeout and a 10 MiB body cap.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	MaxResponseBytes int64
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = DefaultMaxResponseBytes
	}
	return c
}

// Client fetches forecasts from the configured provider. It performs one
// synchronous GET per call with no retries, caching, or rate limiting.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client with the given configuration.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Query describes one forecast request. ForecastDays and Daily are optional;
// Normalize fills in the defaults and Validate rejects out-of-range values
// before any request is issued.
type Query struct {
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	ForecastDays int      `json:"forecast_days"`
	Daily        []string `json:"daily"`
}

// Normalize returns a copy of q with defaults applied.
func (q Query) Normalize() Query {
	if q.ForecastDays == 0 {
		q.ForecastDays = DefaultForecastDays
	}
	if len(q.Daily) == 0 {
		q.Daily = append([]string(nil), DefaultDaily...)
	}
	return q
}

// Validate checks ranges and the daily-variable enum.
func (q Query) Validate() error {
	if q.Latitude < -90 || q.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", q.Latitude)
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", q.Longitude)
	}
	if q.ForecastDays < MinForecastDays || q.ForecastDays > MaxForecastDays {
		return fmt.Errorf("forecast_days %d out of range [%d, %d]", q.ForecastDays, MinForecastDays, MaxForecastDays)
	}
	for _, name := range q.Daily {
		if _, ok := knownDaily[name]; !ok {
			return fmt.Errorf("unknown daily variable %q", name)
		}
	}
	return nil
}

// Result is the structured outcome of one forecast request. On failure only
// Source and Error are populated.
type Result struct {
	Source string            `json:"source"`
	Query  *Query            `json:"query,omitempty"`
	Units  map[string]string `json:"units"`
	Daily  map[string][]any  `json:"daily"`
	Error  string            `json:"error,omitempty"`
}

func errorResult(msg string) Result {
	return Result{Source: Source, Error: msg}
}

// providerResponse is the subset of the provider body this tool passes
// through: daily_units maps variable names to unit strings, daily maps
// variable names to per-day value sequences (plus the provider's time axis).
type providerResponse struct {
	DailyUnits map[string]string `json:"daily_units"`
	Daily      map[string][]any  `json:"daily"`
}

// Tools returns a ToolBox containing the get_weather_forecast tool.
func (c *Client) Tools() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(c.forecastTool())

	return tb
}

type fetchInput struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	ForecastDays int      `json:"forecast_days"`
	Daily        []string `json:"daily"`
}

func (c *Client) forecastTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "get_weather_forecast",
		Description: "Get a daily weather forecast for a location. Returns per-day values and " +
			"units for the requested variables (defaults: max/min temperature, precipitation sum, " +
			"max wind speed, weather code). Timezone is inferred from the coordinates.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{` +
			`"latitude":{"type":"number","minimum":-90,"maximum":90,"description":"Latitude in decimal degrees"},` +
			`"longitude":{"type":"number","minimum":-180,"maximum":180,"description":"Longitude in decimal degrees"},` +
			`"forecast_days":{"type":"integer","minimum":1,"maximum":7,"description":"Number of forecast days (default 3)"},` +
			`"daily":{"type":"array","items":{"type":"string","enum":["temperature_2m_max","temperature_2m_min","precipitation_sum","wind_speed_10m_max","weather_code"]},"description":"Daily variables to request"}` +
			`},"required":["latitude","longitude"]}`),
		Handler: c.handleFetch,
	}
}

func (c *Client) handleFetch(ctx context.Context, input json.RawMessage) (string, error) {
	var in fetchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("get_weather_forecast: invalid input: %w", err)
	}

	if in.Latitude == nil {
		return "", fmt.Errorf("get_weather_forecast: latitude is required")
	}
	if in.Longitude == nil {
		return "", fmt.Errorf("get_weather_forecast: longitude is required")
	}

	q := Query{
		Latitude:     *in.Latitude,
		Longitude:    *in.Longitude,
		ForecastDays: in.ForecastDays,
		Daily:        in.Daily,
	}.Normalize()

	if err := q.Validate(); err != nil {
		return "", fmt.Errorf("get_weather_forecast: %w", err)
	}

	result := c.Forecast(ctx, q)

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("get_weather_forecast: marshal result: %w", err)
	}

	return string(data), nil
}

// Forecast issues one GET for q, which must already be normalized and valid.
// It never returns an error; request failures are folded into the Result.
func (c *Client) Forecast(ctx context.Context, q Query) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(q), nil)
	if err != nil {
		return errorResult(fmt.Sprintf("create request: %v", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errorResult(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	body, truncated, err := readBody(resp.Body, c.cfg.MaxResponseBytes)
	if err != nil {
		return errorResult(fmt.Sprintf("read response: %v", err))
	}
	if truncated {
		return errorResult(fmt.Sprintf("response exceeded limit (%d bytes)", c.cfg.MaxResponseBytes))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorResult(fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed providerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errorResult(fmt.Sprintf("malformed provider response: %v", err))
	}

	return Result{
		Source: Source,
		Query:  &q,
		Units:  parsed.DailyUnits,
		Daily:  parsed.Daily,
	}
}

func (c *Client) requestURL(q Query) string {
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	v.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	v.Set("forecast_days", strconv.Itoa(q.ForecastDays))
	v.Set("daily", strings.Join(q.Daily, ","))
	v.Set("timezone", "auto")

	return c.cfg.BaseURL + "?" + v.Encode()
}

// readBody reads at most limit bytes and reports whether the body was larger.
func readBody(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}
