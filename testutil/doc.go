// Package testutil provides testing utilities for frozen.
//
// This package is intended for use in tests and benchmarks only.
// It provides the country fixture used throughout the test-suite and a
// seeded RNG for generating random datasets.
//
// # Fixtures
//
//	rows := testutil.Countries()        // []record.Attributes
//	ds := testutil.CountriesDataset(t)  // *dataset.Dataset
//
// # Random Datasets
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.Rows(500, testutil.DefaultColumns)
package testutil
