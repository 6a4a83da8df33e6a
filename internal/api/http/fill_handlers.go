package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/formfill/internal/domain/manager"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// Suggestions returns the suggestions for a focused field
func (h *Handlers) Suggestions(c *gin.Context) {
	var req SuggestionsRequest
	if !bind(c, &req, func() *types.Form { return req.Form }) {
		return
	}
	source := req.Source
	if source == "" {
		source = types.SourceFormControlElementClicked
	}

	out, err := h.mgr.OnAskForValuesToFill(c.Request.Context(), req.Form, req.Field, source)
	if err != nil {
		h.fail(c, "suggestions", err)
		return
	}
	if out.Suggestions == nil {
		out.Suggestions = []types.Suggestion{}
	}
	c.JSON(http.StatusOK, out)
}

// Fill fills or previews the chosen record
func (h *Handlers) Fill(c *gin.Context) {
	var req FillRequest
	if !bind(c, &req, func() *types.Form { return req.Form }) {
		return
	}
	action, err := parseAction(req.Action)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateGUID(req.RecordGUID); err != nil {
		badRequest(c, err)
		return
	}

	details := types.TriggerDetails{Source: req.Source, Method: req.Method}
	if details.Source == "" {
		details.Source = types.SourcePopup
	}
	if len(req.FieldTypes) > 0 {
		details.FieldTypesToFill = types.NewFieldTypeSet(req.FieldTypes...)
	}

	out, err := h.mgr.OnFillChosen(c.Request.Context(), manager.FillRequest{
		Action:         action,
		Form:           req.Form,
		Field:          req.Field,
		RecordGUID:     req.RecordGUID,
		CVC:            req.CVC,
		UnmaskedNumber: req.UnmaskedNumber,
		Details:        details,
	})
	if err != nil {
		h.fail(c, "fill", err)
		return
	}
	if out.Writes == nil {
		out.Writes = []types.FieldWrite{}
	}
	c.JSON(http.StatusOK, FillResponse{FillOutcome: out, Applied: sortedIDs(out.Applied)})
}

// Undo reverts the most recent fill touching the field
func (h *Handlers) Undo(c *gin.Context) {
	var req UndoRequest
	if !bind(c, &req, func() *types.Form { return req.Form }) {
		return
	}
	action, err := parseAction(req.Action)
	if err != nil {
		badRequest(c, err)
		return
	}

	out, err := h.mgr.OnUndo(c.Request.Context(), req.Form, req.Field, action)
	if err != nil {
		h.fail(c, "undo", err)
		return
	}
	if out.Writes == nil {
		out.Writes = []types.FieldWrite{}
	}
	c.JSON(http.StatusOK, UndoResponse{UndoOutcome: out, Applied: sortedIDs(out.Applied)})
}
