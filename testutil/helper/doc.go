// Package helper provides test doubles and fixtures shared by the tests of this module:
// spies for logging, metrics and tracing, a fake testing.TB, and unique ID generation.
package helper
