// Package history keeps the undo ledger of fill operations.
//
// Each committed fill pushes an Entry holding the pre-fill value and
// autofill state of every field it wrote. Undo pops the most recent entry
// that was triggered from, or wrote, the given field and restores those
// snapshots once; undoing again without an intervening fill finds nothing.
package history
