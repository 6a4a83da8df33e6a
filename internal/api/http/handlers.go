package http

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/domain/manager"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/formfill/internal/providers/htmlform"
	"github.com/GriffinCanCode/formfill/internal/providers/store"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// BreakerReporter exposes the state of a guarded remote collaborator
type BreakerReporter interface {
	BreakerState() resilience.State
}

// Deps are the collaborators the handlers need
type Deps struct {
	Manager   *manager.Manager
	Extractor *htmlform.Extractor
	Metrics   *monitoring.Metrics
	Logger    *logging.Logger
	// PlusAddress is nil when no delegate is configured
	PlusAddress BreakerReporter
}

// Handlers contains all HTTP handlers
type Handlers struct {
	mgr         *manager.Manager
	extractor   *htmlform.Extractor
	metrics     *monitoring.Metrics
	log         *logging.Logger
	plusAddress BreakerReporter

	// importSeq spaces renderer ids of successive HTML imports apart
	importSeq atomic.Uint64
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewMetrics(nil)
	}
	if deps.Extractor == nil {
		deps.Extractor = htmlform.NewExtractor(deps.Logger)
	}
	return &Handlers{
		mgr:         deps.Manager,
		extractor:   deps.Extractor,
		metrics:     deps.Metrics,
		log:         deps.Logger.Named("api"),
		plusAddress: deps.PlusAddress,
	}
}

// Root identifies the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "formfill",
		"version": "0.1.0",
	})
}

// Health reports cache size, running totals and remote collaborators
func (h *Handlers) Health(c *gin.Context) {
	plus := gin.H{"configured": h.plusAddress != nil}
	if h.plusAddress != nil {
		plus["breaker"] = h.plusAddress.BreakerState().String()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"forms_cached": h.mgr.FormCount(),
		"totals":       h.metrics.GetSnapshot(),
		"plus_address": plus,
	})
}

// Reset drops every cached form, as on navigation
func (h *Handlers) Reset(c *gin.Context) {
	h.mgr.Reset()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveRecord deletes a stored profile or card
func (h *Handlers) RemoveRecord(c *gin.Context) {
	var req RemoveRecordRequest
	if !bind(c, &req, nil) {
		return
	}
	if err := utils.ValidateGUID(req.RecordGUID); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.mgr.RemoveRecord(c.Request.Context(), req.RecordGUID); err != nil {
		h.fail(c, "remove record", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// fail maps a manager error to a status code and writes it
func (h *Handlers) fail(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, manager.ErrUnknownForm), errors.Is(err, store.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, manager.ErrFieldNotInForm):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("op", op), zap.Error(err))
	} else {
		h.log.Debug("request rejected", zap.String("op", op), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// bind decodes the JSON body into req. A form snapshot carried by the
// request is validated too; one without fields refers to a cached form.
func bind(c *gin.Context, req any, form func() *types.Form) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, err)
		return false
	}
	if form == nil {
		return true
	}
	if f := form(); f != nil && len(f.Fields) > 0 {
		if err := utils.ValidateForm(f); err != nil {
			badRequest(c, err)
			return false
		}
	}
	return true
}
