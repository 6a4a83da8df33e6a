package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the driver API. Metrics are served from gatherer
// when it is non-nil.
func RegisterRoutes(router gin.IRouter, h *Handlers, gatherer prometheus.Gatherer) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Form lifecycle
	router.POST("/forms/seen", h.FormsSeen)
	router.POST("/forms/removed", h.FormsRemoved)
	router.POST("/forms/html", h.ImportHTML)
	router.POST("/forms/select-options", h.SelectOptionsChanged)
	router.POST("/forms/submitted", h.Submitted)
	router.GET("/forms/:frame/:renderer", h.GetForm)
	router.POST("/reset", h.Reset)

	// Suggestions and filling
	router.POST("/suggestions", h.Suggestions)
	router.POST("/fill", h.Fill)
	router.POST("/undo", h.Undo)
	router.POST("/records/remove", h.RemoveRecord)

	// Field events
	router.POST("/fields/text-changed", h.TextChanged)
	router.POST("/fields/script-changed", h.ScriptChanged)
	router.GET("/fields/:frame/:renderer/log", h.FieldLog)
}
