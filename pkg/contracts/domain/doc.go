// Package domain defines the shared value types exchanged between the fetch
// adapters, the aggregator and callers: observations, normalized series and
// the merged table. All types are plain values created fresh per call; the
// package never touches the network or the filesystem.
package domain
