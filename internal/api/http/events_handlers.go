package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// TextChanged records a user edit of a field
func (h *Handlers) TextChanged(c *gin.Context) {
	var req FieldEventRequest
	if !bind(c, &req, func() *types.Form { return req.Form }) {
		return
	}
	if err := h.mgr.OnTextFieldDidChange(c.Request.Context(), req.Form, req.Field, req.Value); err != nil {
		h.fail(c, "text_changed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ScriptChanged reports that page script changed an autofilled value.
// The new value is read from the snapshot; Value holds the old one.
func (h *Handlers) ScriptChanged(c *gin.Context) {
	var req FieldEventRequest
	if !bind(c, &req, func() *types.Form { return req.Form }) {
		return
	}
	analysis, err := h.mgr.OnJavaScriptChangedAutofilledValue(c.Request.Context(), req.Form, req.Field, req.Value)
	if err != nil {
		h.fail(c, "script_changed", err)
		return
	}
	c.JSON(http.StatusOK, ScriptChangeResponse{
		WithinWindow:    analysis.WithinWindow,
		ClearedFirst:    analysis.ClearedFirst,
		RepairedValue:   analysis.Repaired,
		RefillScheduled: analysis.Task != nil,
	})
}

// SelectOptionsChanged re-reads a form whose select options were replaced
func (h *Handlers) SelectOptionsChanged(c *gin.Context) {
	var req FormRequest
	if !bind(c, &req, nil) {
		return
	}
	if err := h.mgr.OnSelectOptionsDidChange(c.Request.Context(), req.Form); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Submitted flushes the field logs of a submitted form
func (h *Handlers) Submitted(c *gin.Context) {
	var req FormRequest
	if !bind(c, &req, func() *types.Form { return req.Form }) {
		return
	}
	batch, err := h.mgr.OnFormSubmitted(c.Request.Context(), req.Form)
	if err != nil {
		h.fail(c, "submitted", err)
		return
	}
	c.JSON(http.StatusOK, submitResponse(batch))
}

// FieldLog returns the events logged so far for one field
func (h *Handlers) FieldLog(c *gin.Context) {
	field, ok := fieldIDParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, FieldLog{Field: field, Events: loggedEvents(h.mgr.FieldLog(field))})
}
