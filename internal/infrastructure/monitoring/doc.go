/*
Package monitoring provides Prometheus metrics for the autofill engine.

# Overview

Collectors are created against an injectable prometheus.Registerer so the
server registers them once on its own registry while tests build
unregistered instances freely.

# Features

- HTTP request metrics (latency, status)
- Suggestion outcomes per product (shown, empty, disabled, warning)
- Fill outcomes per product, action and status, plus per-reason skip counts
- Stale-form aborts and iframe-policy blocked writes
- Refill decisions and script-cleared autofilled values
- Undo counts and flushed field log events

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	timer := monitoring.NewTimer(metrics, "address")
	// ... compute fill ...
	timer.Stop()
*/
package monitoring
