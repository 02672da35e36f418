// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// Implementations in this package compose table-level repos from internal/data/repos and
// flush their edits through a unit of work, which owns the transaction boundary and runs
// the flush listeners (restart capture) inside it.
package aggregates
