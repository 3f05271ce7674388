// Package exporter writes and reads indicator tables as CSV and Excel
// files.
//
// The on-disk layout is one row per date: a "date" header column in
// 2006-01-02 format followed by one column per indicator. Missing cells
// are written as empty strings and read back as missing values, so a
// write followed by a read reproduces the table.
package exporter
