// Package analysis provides pure helper functions over table columns:
// growth rates, moving averages, log returns, correlation and descriptive
// statistics.
//
// Every function is total over well-formed input: missing values propagate
// through to the output instead of raising, and an output cell is missing
// whenever its inputs do not fully determine it. Only structurally invalid
// requests (a non-positive window or period) are rejected with an error.
package analysis
