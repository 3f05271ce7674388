// Package sample generates deterministic synthetic economic indicators
// for demos and fixtures.
package sample
