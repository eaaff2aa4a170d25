// Package testutil provides testing utilities for vecquery.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random candidate sets and for
// computing exact nearest neighbors with a reference full sort.
package testutil
