// Package http exposes the autofill manager as a JSON API for browser
// drivers.
//
// Forms and field events arrive as snapshots keyed by frame token and
// renderer id. Fill and undo responses list the field writes the driver
// must apply. Manager lookup errors map onto 404 and 400; anything else
// is logged and returned as 500.
package http
