package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"econdata/internal/config"
	apierrors "econdata/internal/errors"
	"econdata/internal/fetch"
	"econdata/internal/infrastructure"
	"econdata/pkg/contracts/domain"

	"github.com/guregu/null/v6"
)

// SourceName identifies this adapter in errors, logs and metrics.
const SourceName = "worldbank"

const defaultBaseURL = "https://api.worldbank.org/v2"

// DefaultCountry is used when a fetch.Source identifier names no country.
const DefaultCountry = "USA"

// Config configures a World Bank client. Zero fields fall back to defaults.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// PerPage is the page size requested from the paginated API.
	PerPage int
	Logger  *slog.Logger
}

// Client fetches indicator data from the World Bank API. Safe for
// concurrent use; calls are independent and stateless.
type Client struct {
	baseURL string
	http    *http.Client
	perPage int
	logger  *slog.Logger
}

// New creates a World Bank client from cfg, applying defaults for unset
// fields.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		perPage: cfg.PerPage,
		logger:  cfg.Logger,
	}
}

// NewFromConfig builds a client from the toolkit configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return New(Config{
		BaseURL:    cfg.WorldBank.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTP.Timeout},
		PerPage:    cfg.WorldBank.PerPage,
		Logger:     logger,
	})
}

// Name implements fetch.Source.
func (c *Client) Name() string { return SourceName }

// pageInfo is the first element of every indicator response.
type pageInfo struct {
	Page    int         `json:"page"`
	Pages   int         `json:"pages"`
	PerPage json.Number `json:"per_page"`
	Total   int         `json:"total"`
}

// wbRef is the {id, value} pair the API uses for indicator and country.
type wbRef struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// wbRow is one observation row. Value is a pointer: the API sends null for
// periods the country has no datum for.
type wbRow struct {
	Indicator   wbRef    `json:"indicator"`
	Country     wbRef    `json:"country"`
	CountryISO3 string   `json:"countryiso3code"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
	Unit        string   `json:"unit"`
}

// wbMessage is the body of an error response (a one-element array).
type wbMessage struct {
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

// FetchIndicator fetches one indicator for a set of countries, returning
// one normalized series per country keyed by its ISO3 code. An empty
// country list requests the World Bank's "all" aggregate set.
func (c *Client) FetchIndicator(ctx context.Context, indicator string, countries []string, r fetch.Range) (out map[string]*domain.Series, err error) {
	indicator = strings.TrimSpace(indicator)
	if indicator == "" {
		return nil, apierrors.InvalidIdentifier(SourceName, indicator, "empty indicator code")
	}
	if len(countries) == 0 {
		countries = []string{"all"}
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()
	defer func() { fetch.RecordFetch(ctx, SourceName, err, time.Since(start)) }()

	rows, err := c.allRows(ctx, indicator, countries, r)
	if err != nil {
		return nil, err
	}

	out, err = groupByCountry(indicator, rows, r)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "fetched world bank indicator",
		slog.String("indicator", indicator),
		slog.Int("countries", len(out)),
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

// FetchSeries implements fetch.Source for one (indicator, country) pair
// written as "INDICATOR:ISO3"; a bare indicator defaults to DefaultCountry.
func (c *Client) FetchSeries(ctx context.Context, id string, r fetch.Range) (*domain.Series, error) {
	indicator, country := splitIdentifier(id)
	byCountry, err := c.FetchIndicator(ctx, indicator, []string{country}, r)
	if err != nil {
		return nil, err
	}
	s, ok := byCountry[strings.ToUpper(country)]
	if !ok {
		return nil, apierrors.InvalidIdentifier(SourceName, id,
			fmt.Sprintf("no data rows for country %q", country))
	}
	return s, nil
}

// FetchMultiple implements fetch.Source with sequential per-identifier
// fetches; failures are isolated in the result.
func (c *Client) FetchMultiple(ctx context.Context, ids []string, r fetch.Range) *fetch.BatchResult {
	return fetch.FetchEach(ctx, ids, r, c.FetchSeries)
}

func splitIdentifier(id string) (indicator, country string) {
	indicator = strings.TrimSpace(id)
	country = DefaultCountry
	if i := strings.LastIndex(indicator, ":"); i >= 0 {
		country = strings.TrimSpace(indicator[i+1:])
		indicator = strings.TrimSpace(indicator[:i])
	}
	return indicator, country
}

// allRows walks the pagination cursor until every page is consumed.
func (c *Client) allRows(ctx context.Context, indicator string, countries []string, r fetch.Range) ([]wbRow, error) {
	var rows []wbRow
	for page := 1; ; page++ {
		info, pageRows, err := c.fetchPage(ctx, indicator, countries, r, page)
		if err != nil {
			return nil, err
		}
		rows = append(rows, pageRows...)
		if page >= info.Pages || len(pageRows) == 0 {
			return rows, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, indicator string, countries []string, r fetch.Range, page int) (pageInfo, []wbRow, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("page", strconv.Itoa(page))
	if dateParam := formatDateParam(r); dateParam != "" {
		params.Set("date", dateParam)
	}

	reqURL := fmt.Sprintf("%s/country/%s/indicator/%s?%s",
		c.baseURL,
		url.PathEscape(strings.Join(countries, ";")),
		url.PathEscape(indicator),
		params.Encode())

	c.logger.DebugContext(ctx, "world bank request",
		slog.String("indicator", indicator),
		slog.Int("page", page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return pageInfo{}, nil, apierrors.UpstreamUnavailable(SourceName, indicator, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return pageInfo{}, nil, apierrors.UpstreamUnavailable(SourceName, indicator, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return pageInfo{}, nil, apierrors.UpstreamUnavailable(SourceName, indicator, err)
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return pageInfo{}, nil, apierrors.InvalidIdentifier(SourceName, indicator, "indicator or country not found")
		}
		return pageInfo{}, nil, apierrors.UpstreamUnavailable(SourceName, indicator,
			fmt.Errorf("world bank returned status %d", resp.StatusCode))
	}

	return decodePage(indicator, body)
}

// decodePage splits the two-element response array; a one-element array is
// an upstream error message.
func decodePage(indicator string, body []byte) (pageInfo, []wbRow, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return pageInfo{}, nil, apierrors.MalformedResponse(SourceName, indicator, err)
	}

	if len(elements) == 1 {
		var msg wbMessage
		if err := json.Unmarshal(elements[0], &msg); err == nil && len(msg.Message) > 0 {
			m := msg.Message[0]
			// id 120 is "Invalid value": an unknown indicator or country.
			if m.ID == "120" || strings.EqualFold(m.Key, "invalid value") {
				return pageInfo{}, nil, apierrors.InvalidIdentifier(SourceName, indicator, m.Value)
			}
			return pageInfo{}, nil, apierrors.MalformedResponse(SourceName, indicator,
				fmt.Errorf("world bank error %s: %s", m.ID, m.Value))
		}
		return pageInfo{}, nil, apierrors.MalformedResponse(SourceName, indicator,
			fmt.Errorf("single-element response with no message"))
	}
	if len(elements) < 2 {
		return pageInfo{}, nil, apierrors.MalformedResponse(SourceName, indicator,
			fmt.Errorf("expected [pageInfo, rows], got %d elements", len(elements)))
	}

	var info pageInfo
	if err := json.Unmarshal(elements[0], &info); err != nil {
		return pageInfo{}, nil, apierrors.MalformedResponse(SourceName, indicator, err)
	}
	// "null" rows happen when a filter matches nothing.
	var rows []wbRow
	if string(elements[1]) != "null" {
		if err := json.Unmarshal(elements[1], &rows); err != nil {
			return pageInfo{}, nil, apierrors.MalformedResponse(SourceName, indicator, err)
		}
	}
	return info, rows, nil
}

// groupByCountry turns the flat row set into one ascending series per
// country. Rows arrive newest-first from the API.
func groupByCountry(indicator string, rows []wbRow, r fetch.Range) (map[string]*domain.Series, error) {
	type entry struct {
		name string
		obs  []domain.Observation
	}
	byCountry := make(map[string]*entry)

	for _, row := range rows {
		iso3 := strings.ToUpper(row.CountryISO3)
		if iso3 == "" {
			iso3 = strings.ToUpper(row.Country.ID)
		}
		date, err := parseDate(row.Date)
		if err != nil {
			return nil, apierrors.MalformedResponse(SourceName, indicator, err)
		}
		if !r.Contains(date) {
			continue
		}

		value := null.Float{}
		if row.Value != nil {
			value = null.FloatFrom(*row.Value)
		}

		e, ok := byCountry[iso3]
		if !ok {
			e = &entry{name: row.Country.Value}
			byCountry[iso3] = e
		}
		e.obs = append(e.obs, domain.Observation{Date: date, Value: value})
	}

	out := make(map[string]*domain.Series, len(byCountry))
	for iso3, e := range byCountry {
		sort.Slice(e.obs, func(i, j int) bool { return e.obs[i].Date.Before(e.obs[j].Date) })
		s := &domain.Series{
			ID:           indicator + ":" + iso3,
			Title:        fmt.Sprintf("%s (%s)", indicatorName(rows), e.name),
			Frequency:    domain.FrequencyAnnual,
			Source:       SourceName,
			Observations: e.obs,
		}
		if err := s.Validate(); err != nil {
			return nil, apierrors.MalformedResponse(SourceName, indicator, err)
		}
		out[iso3] = s
	}
	return out, nil
}

func indicatorName(rows []wbRow) string {
	for _, row := range rows {
		if row.Indicator.Value != "" {
			return row.Indicator.Value
		}
	}
	return ""
}

// parseDate handles the period formats the API emits: annual "2012",
// monthly "2012M01" and quarterly "2012Q1".
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, "M"):
		t, err := time.Parse("2006M01", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("unparseable monthly period %q: %w", s, err)
		}
		return domain.Day(t), nil
	case strings.Contains(s, "Q"):
		parts := strings.SplitN(s, "Q", 2)
		year, err1 := strconv.Atoi(parts[0])
		quarter, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || quarter < 1 || quarter > 4 {
			return time.Time{}, fmt.Errorf("unparseable quarterly period %q", s)
		}
		return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
	default:
		year, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("unparseable period %q: %w", s, err)
		}
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
}

// formatDateParam renders the range as the API's year-span filter.
func formatDateParam(r fetch.Range) string {
	if r.IsZero() {
		return ""
	}
	startYear := 1960
	if !r.Start.IsZero() {
		startYear = r.Start.Year()
	}
	endYear := time.Now().UTC().Year()
	if !r.End.IsZero() {
		endYear = r.End.Year()
	}
	return fmt.Sprintf("%d:%d", startYear, endYear)
}
