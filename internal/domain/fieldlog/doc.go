// Package fieldlog records typed per-field events for submission-time aggregation.
package fieldlog
