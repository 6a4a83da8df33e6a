// Package server wires the autofill server together.
//
// Server Lifecycle:
//  1. Build the logger from configuration
//  2. Create the Prometheus registry and metrics
//  3. Load the record store (YAML file or empty)
//  4. Create the manager with the heuristic classifier, the frame policy
//     driver and, when configured, the plus-address delegate
//  5. Install middleware (recovery, request ids, metrics, CORS and rate limiting)
//  6. Register the driver API routes
//  7. Serve until Close, which cancels pending refills first
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
