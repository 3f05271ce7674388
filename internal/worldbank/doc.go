// Package worldbank implements the fetch.Source adapter for the World Bank
// indicators API (v2). No API key is required.
//
// The indicator endpoint returns a two-element JSON array: a pagination
// header followed by the observation rows. Rows cover every requested
// (country, period) cell and carry a JSON null where the country has no
// datum for that period; the adapter preserves those as missing data. All
// pages are fetched and concatenated before any series is returned, and the
// newest-first ordering the API uses is re-sorted ascending.
//
// One request can span several countries, so the primary entry point,
// FetchIndicator, returns one normalized series per (indicator, country)
// pair. The generic fetch.Source surface addresses a single pair with the
// identifier form "INDICATOR:ISO3".
package worldbank
