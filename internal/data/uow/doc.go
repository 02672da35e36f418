// Package uow implements a unit of work over GORM.
//
// Entities loaded through a UnitOfWork are snapshotted column by column. Flush computes a
// write plan (inserts, per-column updates, deletes), hands it to the registered listeners
// inside the commit transaction, then executes it. Listeners may stage follow-up changes
// through the Stager on the flush event; those changes join the same write plan and are
// never shown to the listeners again.
package uow
