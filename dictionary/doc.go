// Package dictionary converts dimension values between their global surrogate
// key form and the per-chunk local dictionary encoding.
//
// Global keys are fixed-width big-endian byte strings, so byte order equals
// surrogate order. A Local dictionary assigns dense codes to the distinct
// global keys of one column chunk in ascending key order, which keeps sorted
// key sets sorted after translation.
package dictionary
