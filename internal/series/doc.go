// Package series merges normalized series into a single time-indexed table.
//
// The merged axis is the sorted union of every input's observation dates; a
// series lacking a date another series has contributes a missing cell there.
// A fill policy then decides what happens to the gaps: leave them, carry the
// last value forward, interpolate linearly in time, or drop incomplete rows.
package series
