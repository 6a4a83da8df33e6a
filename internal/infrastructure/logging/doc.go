// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *Logger and derive a named child with Named, so log
// lines carry "manager", "refill" or "http" as the logger name. The Form,
// Field and Product helpers keep field keys consistent across packages.
// Raw field values are never logged.
//
// Example Usage:
//
//	logger := logging.NewDefault().Named("manager")
//	logger.Info("form filled", logging.Form(form.GlobalID), zap.Int("filled", 7))
package logging
