// Package restart flags stations whose streaming backend must be restarted.
//
// Capture runs as a unit-of-work flush listener. It classifies every pending insert,
// update and delete, ignores updates that only touch insignificant columns, collects the
// owning stations once each, and then stages needs_restart=true for them into the same
// commit. The staging write goes through uow.Stager and is never classified again.
package restart
