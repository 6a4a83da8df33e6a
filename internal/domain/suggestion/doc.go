// Package suggestion turns stored records into the ranked, labeled entries
// offered for a focused form field.
//
// Generation is a pure read over the records handed in by the caller: the
// same form, field and record list always produce the same ordered output.
// Records are filtered by the field's current text, ranked (unexpired cards
// first, then by a frecency score over use count and last use), deduplicated
// for addresses and labeled. A small handler chain decides which surface
// shows the result.
package suggestion
