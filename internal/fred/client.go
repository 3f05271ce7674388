package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"econdata/internal/config"
	apierrors "econdata/internal/errors"
	"econdata/internal/fetch"
	"econdata/internal/infrastructure"
	"econdata/pkg/contracts/domain"

	"github.com/guregu/null/v6"
)

// SourceName identifies this adapter in errors, logs and metrics.
const SourceName = "fred"

const (
	defaultBaseURL = "https://api.stlouisfed.org"
	// pageLimit is the maximum observation count FRED serves per request.
	pageLimit = 100000
	// missingValue is FRED's marker for an observation with no datum.
	missingValue = "."
)

// Config configures a FRED client. Zero fields fall back to defaults; only
// APIKey has no default.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// RateLimit is the client-side budget in requests per second.
	RateLimit float64
	Burst     int
	Logger    *slog.Logger
}

// Client fetches series from FRED. It is safe for concurrent use; every
// call is independent and stateless apart from the shared rate limiter.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a FRED client from cfg, applying defaults for unset fields.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:  cfg.Logger,
	}
}

// NewFromConfig builds a client from the toolkit configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return New(Config{
		APIKey:     cfg.FRED.APIKey,
		BaseURL:    cfg.FRED.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTP.Timeout},
		RateLimit:  cfg.FRED.RateLimit,
		Burst:      cfg.FRED.Burst,
		Logger:     logger,
	})
}

// Name implements fetch.Source.
func (c *Client) Name() string { return SourceName }

// observationsResponse is the shape of /fred/series/observations.
type observationsResponse struct {
	Count        int           `json:"count"`
	Offset       int           `json:"offset"`
	Limit        int           `json:"limit"`
	Observations []observation `json:"observations"`
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// seriesResponse is the shape of /fred/series.
type seriesResponse struct {
	Seriess []seriesInfo `json:"seriess"`
}

type seriesInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Frequency string `json:"frequency"`
	Units     string `json:"units"`
}

// errorResponse is the body FRED sends with non-200 statuses.
type errorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// FetchSeries implements fetch.Source. It returns the series with all
// observation dates inside r, strictly increasing, with FRED's "." markers
// preserved as missing data.
func (c *Client) FetchSeries(ctx context.Context, id string, r fetch.Range) (s *domain.Series, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apierrors.InvalidIdentifier(SourceName, id, "empty series identifier")
	}
	if c.apiKey == "" {
		return nil, apierrors.AuthenticationRequired(SourceName, id,
			"FRED API key is required; get one at https://fred.stlouisfed.org/docs/api/api_key.html")
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()
	defer func() { fetch.RecordFetch(ctx, SourceName, err, time.Since(start)) }()

	info, err := c.seriesInfo(ctx, id)
	if err != nil {
		return nil, err
	}

	observations, err := c.observations(ctx, id, r)
	if err != nil {
		return nil, err
	}

	s = &domain.Series{
		ID:           id,
		Title:        info.Title,
		Unit:         info.Units,
		Frequency:    domain.ParseFrequency(info.Frequency),
		Source:       SourceName,
		Observations: observations,
	}
	if err = s.Validate(); err != nil {
		return nil, apierrors.MalformedResponse(SourceName, id, err)
	}

	c.logger.InfoContext(ctx, "fetched fred series",
		slog.String("series_id", id),
		slog.Int("observations", s.Len()),
		slog.String("frequency", s.Frequency.String()),
		slog.Duration("elapsed", time.Since(start)))
	return s, nil
}

// FetchMultiple implements fetch.Source with sequential per-identifier
// fetches; failures are isolated in the result.
func (c *Client) FetchMultiple(ctx context.Context, ids []string, r fetch.Range) *fetch.BatchResult {
	return fetch.FetchEach(ctx, ids, r, c.FetchSeries)
}

// seriesInfo fetches title, units and frequency for the series.
func (c *Client) seriesInfo(ctx context.Context, id string) (seriesInfo, error) {
	params := url.Values{}
	params.Set("series_id", id)

	var resp seriesResponse
	if err := c.getJSON(ctx, "/fred/series", params, id, &resp); err != nil {
		return seriesInfo{}, err
	}
	if len(resp.Seriess) == 0 {
		return seriesInfo{}, apierrors.InvalidIdentifier(SourceName, id, "series does not exist")
	}
	return resp.Seriess[0], nil
}

// observations fetches all observation pages and concatenates them.
func (c *Client) observations(ctx context.Context, id string, r fetch.Range) ([]domain.Observation, error) {
	var out []domain.Observation
	for offset := 0; ; {
		params := url.Values{}
		params.Set("series_id", id)
		params.Set("limit", strconv.Itoa(pageLimit))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("sort_order", "asc")
		if !r.Start.IsZero() {
			params.Set("observation_start", r.Start.Format("2006-01-02"))
		}
		if !r.End.IsZero() {
			params.Set("observation_end", r.End.Format("2006-01-02"))
		}

		var page observationsResponse
		if err := c.getJSON(ctx, "/fred/series/observations", params, id, &page); err != nil {
			return nil, err
		}

		parsed, err := parseObservations(id, page.Observations, r)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed...)

		offset += len(page.Observations)
		if len(page.Observations) == 0 || offset >= page.Count {
			return out, nil
		}
	}
}

func parseObservations(id string, raw []observation, r fetch.Range) ([]domain.Observation, error) {
	out := make([]domain.Observation, 0, len(raw))
	for _, obs := range raw {
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			return nil, apierrors.MalformedResponse(SourceName, id,
				fmt.Errorf("unparseable observation date %q: %w", obs.Date, err))
		}
		date = domain.Day(date)
		if !r.Contains(date) {
			continue
		}

		value := null.Float{}
		if obs.Value != missingValue && obs.Value != "" {
			f, err := strconv.ParseFloat(obs.Value, 64)
			if err != nil {
				return nil, apierrors.MalformedResponse(SourceName, id,
					fmt.Errorf("unparseable observation value %q at %s: %w", obs.Value, obs.Date, err))
			}
			value = null.FloatFrom(f)
		}
		out = append(out, domain.Observation{Date: date, Value: value})
	}
	return out, nil
}

// getJSON performs one rate-limited GET against the FRED API and decodes
// the 200 body into dst, mapping every other outcome onto the error
// taxonomy.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, id string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apierrors.UpstreamUnavailable(SourceName, id, err)
	}

	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	reqURL := c.baseURL + path + "?" + params.Encode()

	c.logger.DebugContext(ctx, "fred request",
		slog.String("path", path),
		slog.String("series_id", id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apierrors.UpstreamUnavailable(SourceName, id, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apierrors.UpstreamUnavailable(SourceName, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.classifyFailure(id, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return apierrors.MalformedResponse(SourceName, id, err)
	}
	return nil
}

// classifyFailure maps a non-200 FRED response onto the error taxonomy.
// FRED reports both unknown series and bad keys as 400, distinguished only
// by the error message.
func (c *Client) classifyFailure(id string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var fredErr errorResponse
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &fredErr); err == nil && fredErr.ErrorMessage != "" {
		message = fredErr.ErrorMessage
	}

	switch {
	case strings.Contains(strings.ToLower(message), "api_key"),
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return apierrors.AuthenticationRequired(SourceName, id, message)
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusNotFound:
		return apierrors.InvalidIdentifier(SourceName, id, message)
	default:
		// 5xx and 429 are both retryable from the caller's point of view.
		return apierrors.UpstreamUnavailable(SourceName, id,
			fmt.Errorf("fred returned status %d: %s", resp.StatusCode, message))
	}
}
