package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "econdata/internal/errors"
	"econdata/internal/fetch"
)

// fredFixture is a minimal fake of the two FRED endpoints the client uses.
type fredFixture struct {
	t        *testing.T
	key      string
	info     map[string]seriesInfo
	obs      map[string][]observation
	pageSize int
	requests atomic.Int32
	failWith int
	rawBody  string
}

func (f *fredFixture) handler(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		fmt.Fprint(w, `{"error_code":500,"error_message":"Internal Server Error"}`)
		return
	}
	if f.rawBody != "" {
		fmt.Fprint(w, f.rawBody)
		return
	}

	q := r.URL.Query()
	if q.Get("api_key") != f.key {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error_code":400,"error_message":"Bad Request. The value for variable api_key is not registered."}`)
		return
	}
	id := q.Get("series_id")

	switch r.URL.Path {
	case "/fred/series":
		info, ok := f.info[id]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error_code":400,"error_message":"Bad Request. The series does not exist."}`)
			return
		}
		json.NewEncoder(w).Encode(seriesResponse{Seriess: []seriesInfo{info}})
	case "/fred/series/observations":
		all := f.obs[id]
		offset, _ := strconv.Atoi(q.Get("offset"))
		size := f.pageSize
		if size <= 0 {
			size = len(all)
		}
		end := offset + size
		if end > len(all) {
			end = len(all)
		}
		var page []observation
		if offset < len(all) {
			page = all[offset:end]
		}
		json.NewEncoder(w).Encode(observationsResponse{
			Count:        len(all),
			Offset:       offset,
			Limit:        size,
			Observations: page,
		})
	default:
		f.t.Errorf("unexpected path %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fixture *fredFixture, key string) *Client {
	t.Helper()
	fixture.t = t
	server := httptest.NewServer(http.HandlerFunc(fixture.handler))
	t.Cleanup(server.Close)
	return New(Config{
		APIKey:    key,
		BaseURL:   server.URL,
		RateLimit: 1000,
		Burst:     1000,
	})
}

func gdpFixture() *fredFixture {
	return &fredFixture{
		key: "test-key",
		info: map[string]seriesInfo{
			"GDP": {ID: "GDP", Title: "Gross Domestic Product", Frequency: "Quarterly", Units: "Billions of Dollars"},
		},
		obs: map[string][]observation{
			"GDP": {
				{Date: "2020-01-01", Value: "21538.032"},
				{Date: "2020-04-01", Value: "."},
				{Date: "2020-07-01", Value: "21684.551"},
			},
		},
	}
}

func TestFetchSeries(t *testing.T) {
	client := newTestClient(t, gdpFixture(), "test-key")

	s, err := client.FetchSeries(context.Background(), "GDP", fetch.Range{})
	require.NoError(t, err)

	assert.Equal(t, "GDP", s.ID)
	assert.Equal(t, "Gross Domestic Product", s.Title)
	assert.Equal(t, "Billions of Dollars", s.Unit)
	assert.Equal(t, "fred", s.Source)

	require.Equal(t, 3, s.Len())
	assert.Equal(t, 21538.032, s.Observations[0].Value.Float64)
	assert.False(t, s.Observations[1].Value.Valid, "FRED '.' marker is a missing datum")
	assert.True(t, s.Observations[2].Value.Valid)
	require.NoError(t, s.Validate())
}

func TestFetchSeries_Frequency(t *testing.T) {
	client := newTestClient(t, gdpFixture(), "test-key")
	s, err := client.FetchSeries(context.Background(), "GDP", fetch.Range{})
	require.NoError(t, err)
	assert.Equal(t, "quarterly", s.Frequency.String())
}

func TestFetchSeries_RangeFilter(t *testing.T) {
	client := newTestClient(t, gdpFixture(), "test-key")

	r := fetch.Range{
		Start: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	s, err := client.FetchSeries(context.Background(), "GDP", r)
	require.NoError(t, err)

	require.Equal(t, 2, s.Len())
	for _, obs := range s.Observations {
		assert.True(t, r.Contains(obs.Date), "observation %s outside requested range", obs.Date)
	}
}

func TestFetchSeries_Pagination(t *testing.T) {
	fixture := gdpFixture()
	var obs []observation
	for month := 1; month <= 12; month++ {
		obs = append(obs, observation{
			Date:  fmt.Sprintf("2020-%02d-01", month),
			Value: strconv.Itoa(month * 100),
		})
	}
	fixture.obs["GDP"] = obs
	fixture.pageSize = 5

	client := newTestClient(t, fixture, "test-key")
	s, err := client.FetchSeries(context.Background(), "GDP", fetch.Range{})
	require.NoError(t, err)

	require.Equal(t, 12, s.Len(), "all pages concatenated before returning")
	assert.Equal(t, 100.0, s.Observations[0].Value.Float64)
	assert.Equal(t, 1200.0, s.Observations[11].Value.Float64)
	require.NoError(t, s.Validate())
}

func TestFetchSeries_MissingKeyFailsBeforeNetwork(t *testing.T) {
	fixture := gdpFixture()
	client := newTestClient(t, fixture, "")

	_, err := client.FetchSeries(context.Background(), "GDP", fetch.Range{})
	require.Error(t, err)
	assert.True(t, apierrors.IsAuthenticationRequired(err))
	assert.Equal(t, int32(0), fixture.requests.Load(), "no network call with a statically absent key")
}

func TestFetchSeries_RejectedKey(t *testing.T) {
	client := newTestClient(t, gdpFixture(), "wrong-key")

	_, err := client.FetchSeries(context.Background(), "GDP", fetch.Range{})
	require.Error(t, err)
	assert.True(t, apierrors.IsAuthenticationRequired(err))
}

func TestFetchSeries_UnknownSeries(t *testing.T) {
	client := newTestClient(t, gdpFixture(), "test-key")

	_, err := client.FetchSeries(context.Background(), "BAD_ID", fetch.Range{})
	require.Error(t, err)
	assert.True(t, apierrors.IsInvalidIdentifier(err))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestFetchSeries_EmptyIdentifier(t *testing.T) {
	client := newTestClient(t, gdpFixture(), "test-key")
	_, err := client.FetchSeries(context.Background(), "  ", fetch.Range{})
	assert.True(t, apierrors.IsInvalidIdentifier(err))
}

func TestFetchSeries_ServerError(t *testing.T) {
	fixture := gdpFixture()
	fixture.failWith = http.StatusInternalServerError
	client := newTestClient(t, fixture, "test-key")

	_, err := client.FetchSeries(context.Background(), "GDP", fetch.Range{})
	require.Error(t, err)
	assert.True(t, apierrors.IsUpstreamUnavailable(err))
}

func TestFetchSeries_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := New(Config{APIKey: "k", BaseURL: server.URL, RateLimit: 1000, Burst: 1000})
	_, err := client.FetchSeries(context.Background(), "GDP", fetch.Range{})
	require.Error(t, err)
	assert.True(t, apierrors.IsUpstreamUnavailable(err))
}

func TestFetchSeries_MalformedBody(t *testing.T) {
	fixture := gdpFixture()
	fixture.rawBody = `<!doctype html><html>not json</html>`
	client := newTestClient(t, fixture, "test-key")

	_, err := client.FetchSeries(context.Background(), "GDP", fetch.Range{})
	require.Error(t, err)
	assert.True(t, apierrors.IsMalformedResponse(err))
}

func TestFetchSeries_MalformedValue(t *testing.T) {
	fixture := gdpFixture()
	fixture.obs["GDP"] = []observation{{Date: "2020-01-01", Value: "not-a-number"}}
	client := newTestClient(t, fixture, "test-key")

	_, err := client.FetchSeries(context.Background(), "GDP", fetch.Range{})
	require.Error(t, err)
	assert.True(t, apierrors.IsMalformedResponse(err))
	assert.Contains(t, err.Error(), "not-a-number")
}

func TestFetchMultiple_IsolatesFailures(t *testing.T) {
	client := newTestClient(t, gdpFixture(), "test-key")

	result := client.FetchMultiple(context.Background(), []string{"GDP", "BAD_ID"}, fetch.Range{})

	require.Contains(t, result.Series, "GDP")
	assert.Equal(t, 3, result.Series["GDP"].Len())
	require.Contains(t, result.Errors, "BAD_ID")
	assert.True(t, apierrors.IsInvalidIdentifier(result.Errors["BAD_ID"]))
}

func TestNew_Defaults(t *testing.T) {
	client := New(Config{APIKey: "k"})
	assert.Equal(t, defaultBaseURL, client.baseURL)
	assert.NotNil(t, client.http)
	assert.NotNil(t, client.limiter)
	assert.Equal(t, "fred", client.Name())
}
