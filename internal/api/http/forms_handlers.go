package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/providers/htmlform"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// importStride separates the renderer id ranges of successive HTML imports
const importStride = 1 << 20

// FormsSeen registers forms found on the page
func (h *Handlers) FormsSeen(c *gin.Context) {
	var req FormsSeenRequest
	if !bind(c, &req, nil) {
		return
	}
	for i, form := range req.Forms {
		if err := utils.ValidateForm(form); err != nil {
			badRequest(c, fmt.Errorf("forms[%d]: %w", i, err))
			return
		}
	}
	if err := h.mgr.OnFormsSeen(c.Request.Context(), req.Forms); err != nil {
		h.fail(c, "forms_seen", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forms": h.cached(req.Forms)})
}

// FormsRemoved drops forms that left the page
func (h *Handlers) FormsRemoved(c *gin.Context) {
	var req FormsRemovedRequest
	if !bind(c, &req, nil) {
		return
	}
	h.mgr.OnFormsRemoved(c.Request.Context(), req.Forms)
	c.JSON(http.StatusOK, gin.H{"removed": len(req.Forms)})
}

// GetForm returns the cached, classified form
func (h *Handlers) GetForm(c *gin.Context) {
	fid, ok := formIDParam(c)
	if !ok {
		return
	}
	form, found := h.mgr.Form(fid)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return
	}
	session, _ := h.mgr.Session(fid)
	c.JSON(http.StatusOK, gin.H{
		"form":    form,
		"session": session,
		"refill":  h.mgr.RefillState(fid).String(),
	})
}

// ImportHTML extracts forms from a raw HTML body and registers them. The
// page URL and frame token come from the query string; the charset from
// the Content-Type header when present.
func (h *Handlers) ImportHTML(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, utils.MaxHTMLSize+1))
	if err != nil {
		badRequest(c, fmt.Errorf("read body: %w", err))
		return
	}

	base := h.importSeq.Add(1) * importStride
	forms, err := h.extractor.Extract(data, htmlform.Options{
		URL:          c.Query("url"),
		FrameToken:   c.DefaultQuery("frame", "main"),
		ContentType:  c.GetHeader("Content-Type"),
		RendererBase: base,
	})
	if err != nil {
		badRequest(c, err)
		return
	}
	if len(forms) == 0 {
		c.JSON(http.StatusOK, gin.H{"forms": []*types.Form{}})
		return
	}

	if err := h.mgr.OnFormsSeen(c.Request.Context(), forms); err != nil {
		h.fail(c, "import_html", err)
		return
	}
	h.log.Info("imported forms from html",
		zap.Int("forms", len(forms)),
		zap.String("url", c.Query("url")))
	c.JSON(http.StatusOK, gin.H{"forms": h.cached(forms)})
}

// cached returns the classified copies of the given forms
func (h *Handlers) cached(forms []*types.Form) []*types.Form {
	out := make([]*types.Form, 0, len(forms))
	for _, f := range forms {
		if form, ok := h.mgr.Form(f.GlobalID); ok {
			out = append(out, form)
		}
	}
	return out
}

func formIDParam(c *gin.Context) (types.FormGlobalID, bool) {
	renderer, err := strconv.ParseUint(c.Param("renderer"), 10, 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid renderer id %q", c.Param("renderer")))
		return types.FormGlobalID{}, false
	}
	return types.FormGlobalID{FrameToken: c.Param("frame"), RendererID: renderer}, true
}

func fieldIDParam(c *gin.Context) (types.FieldGlobalID, bool) {
	fid, ok := formIDParam(c)
	return types.FieldGlobalID(fid), ok
}
