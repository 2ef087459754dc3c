// Package diffing provides the built-in diff functions for snapshot formats.
//
// Textual formats are compared line by line and mismatches are described as a unified diff
// with a short change summary. Binary formats are either compared byte by byte or, for images,
// with a tunable precision: the fraction of agreeing pixels on a fixed-size sampling grid.
//
// Every Mismatch carries the reference and the candidate under the stable attachment names
// "expected" and "actual", plus a "difference" attachment where one can be rendered.
package diffing
