// Package fred implements the fetch.Source adapter for the Federal Reserve
// Economic Data (FRED) REST API.
//
// The adapter speaks the observations endpoint
// (/fred/series/observations) for data and the series endpoint
// (/fred/series) for unit and frequency metadata. FRED paginates
// observations with a limit/offset cursor; all pages are fetched and
// concatenated before a series is returned. FRED marks missing observations
// with the literal value ".", which the adapter carries through as a missing
// datum rather than dropping the row or substituting zero.
//
// Every call requires an API key; when the key is absent the adapter fails
// before any network I/O. Requests are paced with a client-side rate
// limiter because FRED enforces a per-key request budget.
package fred
