// Package fetch defines the provider-independent fetching surface: the
// Source interface every upstream adapter implements, the date Range callers
// pass in, and the BatchResult that isolates per-identifier failures so one
// bad identifier never discards the data fetched for the others.
//
// Fetching is synchronous and sequential by default and performs no retries;
// Parallel wraps a Source with bounded concurrency without changing result
// semantics.
package fetch
