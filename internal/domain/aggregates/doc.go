// Package aggregates declares the station write boundary and the error codes it reports.
// Implementations live in internal/data/aggregates.
package aggregates
