// Package main is the entry point for the formfill autofill server.
//
// The server exposes the autofill manager over HTTP so a browser driver,
// extension or test harness can report forms and field events and receive
// suggestions and field writes back.
//
// Architecture:
//
//	Driver (page) → HTTP API → Manager → Suggestion Generator
//	                                   → Filling Engine → Driver writes
//	                                   → Refill Controller (timers)
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Serve records from a file with a plus-address delegate
//	./server -port 8000 -records records.yaml -plus-address http://localhost:9000
//
//	# Development mode (console logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
