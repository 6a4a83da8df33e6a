package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formfill/internal/domain/manager"
	"github.com/GriffinCanCode/formfill/internal/domain/refill"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/config"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formfill/internal/providers/store"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/testutil"
)

var classifier = testutil.StaticClassifier{
	"first": types.NameFirst,
	"last":  types.NameLast,
	"city":  types.AddressHomeCity,
}

type apiHarness struct {
	router *gin.Engine
	mgr    *manager.Manager
	driver *testutil.RecordingDriver
}

func newAPI(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem, err := store.NewMemory(types.AddressRecord(testutil.Elvis()), types.CardRecord(testutil.Visa()))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	driver := &testutil.RecordingDriver{}
	sched := refill.NewManualScheduler(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	mgr, err := manager.New(manager.Options{
		Config:     config.DefaultAutofill(),
		Store:      mem,
		Classifier: classifier,
		Driver:     driver,
		Scheduler:  sched,
		Now:        sched.Now,
		Metrics:    metrics,
	})
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router, NewHandlers(Deps{Manager: mgr, Metrics: metrics}), reg)
	return &apiHarness{router: router, mgr: mgr, driver: driver}
}

func (h *apiHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func addressForm() *types.Form {
	return testutil.BuildForm("shipping", 100, testutil.Text("first"), testutil.Text("last"), testutil.Text("city"))
}

func (h *apiHarness) seen(t *testing.T, form *types.Form) {
	t.Helper()
	w := h.do(t, http.MethodPost, "/forms/seen", FormsSeenRequest{Forms: []*types.Form{form}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

type fillBody struct {
	Status  types.FillStatus      `json:"status"`
	Writes  []types.FieldWrite    `json:"writes"`
	Applied []types.FieldGlobalID `json:"applied"`
	Blocked int                   `json:"blocked"`
}

func TestHealth(t *testing.T) {
	h := newAPI(t)

	w := h.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(0), body["forms_cached"])
	assert.Equal(t, map[string]any{"configured": false}, body["plus_address"])
}

func TestFormsSeenClassifies(t *testing.T) {
	h := newAPI(t)
	form := addressForm()

	w := h.do(t, http.MethodPost, "/forms/seen", FormsSeenRequest{Forms: []*types.Form{form}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[struct {
		Forms []*types.Form `json:"forms"`
	}](t, w)
	require.Len(t, body.Forms, 1)
	assert.Equal(t, types.NameFirst, body.Forms[0].Fields[0].Type)
	assert.Equal(t, types.AddressHomeCity, body.Forms[0].Fields[2].Type)
	assert.Equal(t, 1, h.mgr.FormCount())

	w = h.do(t, http.MethodGet, "/forms/main/100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"refill"`)

	w = h.do(t, http.MethodGet, "/forms/main/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuggestFillUndo(t *testing.T) {
	h := newAPI(t)
	form := addressForm()
	h.seen(t, form)
	first := form.Fields[0].GlobalID

	w := h.do(t, http.MethodPost, "/suggestions", SuggestionsRequest{Form: form, Field: first})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sugg := decode[manager.SuggestOutcome](t, w)
	require.NotEmpty(t, sugg.Suggestions)
	assert.Equal(t, "Elvis", sugg.Suggestions[0].Value)
	assert.Equal(t, types.ProductAddress, sugg.Product)

	w = h.do(t, http.MethodPost, "/fill", FillRequest{Form: form, Field: first, RecordGUID: testutil.Elvis().GUID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	filled := decode[fillBody](t, w)
	assert.Equal(t, types.FillStatusFilled, filled.Status)
	assert.Len(t, filled.Writes, 3)
	assert.Equal(t, []types.FieldGlobalID{form.Fields[0].GlobalID, form.Fields[1].GlobalID, form.Fields[2].GlobalID}, filled.Applied)

	w = h.do(t, http.MethodPost, "/undo", UndoRequest{Form: &types.Form{GlobalID: form.GlobalID}, Field: first})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	undone := decode[struct {
		Undone  bool                  `json:"undone"`
		Applied []types.FieldGlobalID `json:"applied"`
	}](t, w)
	assert.True(t, undone.Undone)
	assert.Len(t, undone.Applied, 3)
	assert.Len(t, h.driver.Calls(), 2)
}

func TestFillUnknownRecord(t *testing.T) {
	h := newAPI(t)
	form := addressForm()
	h.seen(t, form)

	w := h.do(t, http.MethodPost, "/fill", FillRequest{Form: form, Field: form.Fields[0].GlobalID, RecordGUID: "missing"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[fillBody](t, w)
	assert.Equal(t, types.FillStatusRecordNotFound, body.Status)
	assert.Empty(t, body.Writes)
	assert.Empty(t, body.Applied)
}

func TestBoundaryErrors(t *testing.T) {
	h := newAPI(t)
	form := addressForm()
	h.seen(t, form)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{
			name:   "unknown form by id",
			path:   "/undo",
			body:   UndoRequest{Form: &types.Form{GlobalID: types.FormGlobalID{FrameToken: "main", RendererID: 7}}},
			status: http.StatusNotFound,
		},
		{
			name:   "field not in form",
			path:   "/suggestions",
			body:   SuggestionsRequest{Form: form, Field: types.FieldGlobalID{FrameToken: "main", RendererID: 999}},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing form",
			path:   "/fill",
			body:   map[string]any{"record_guid": "x"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown action",
			path:   "/fill",
			body:   FillRequest{Form: form, Field: form.Fields[0].GlobalID, RecordGUID: "x", Action: "paint"},
			status: http.StatusBadRequest,
		},
		{
			name:   "oversized record guid",
			path:   "/fill",
			body:   FillRequest{Form: form, Field: form.Fields[0].GlobalID, RecordGUID: strings.Repeat("g", 200)},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestInvalidSnapshotRejected(t *testing.T) {
	h := newAPI(t)
	form := addressForm()
	form.Fields[1].GlobalID = form.Fields[0].GlobalID

	w := h.do(t, http.MethodPost, "/forms/seen", FormsSeenRequest{Forms: []*types.Form{form}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate id")
	assert.Zero(t, h.mgr.FormCount())
}

func TestFieldEventsAndSubmit(t *testing.T) {
	h := newAPI(t)
	form := addressForm()
	h.seen(t, form)
	first := form.Fields[0].GlobalID

	w := h.do(t, http.MethodPost, "/fill", FillRequest{Form: form, Field: first, RecordGUID: testutil.Elvis().GUID})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPost, "/fields/text-changed", FieldEventRequest{Form: form, Field: first, Value: "Elvira"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodGet, "/fields/main/101/log", nil)
	require.Equal(t, http.StatusOK, w.Code)
	log := decode[struct {
		Events []struct {
			Kind string `json:"kind"`
		} `json:"events"`
	}](t, w)
	require.NotEmpty(t, log.Events)
	assert.Equal(t, "typing", log.Events[len(log.Events)-1].Kind)

	w = h.do(t, http.MethodPost, "/forms/submitted", FormRequest{Form: &types.Form{GlobalID: form.GlobalID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	submitted := decode[struct {
		Counts map[string]int `json:"counts"`
		Fields []struct {
			Field  types.FieldGlobalID `json:"field"`
			Events []struct {
				Kind  string `json:"kind"`
				Event struct {
					AutofillStateAfter string `json:"autofill_state_after"`
				} `json:"event"`
			} `json:"events"`
		} `json:"fields"`
	}](t, w)
	assert.Equal(t, 3, submitted.Counts["fill"])
	assert.Equal(t, 1, submitted.Counts["typing"])
	require.Len(t, submitted.Fields, 3)

	var states []string
	for _, f := range submitted.Fields {
		for _, ev := range f.Events {
			if ev.Kind == "fill" {
				states = append(states, ev.Event.AutofillStateAfter)
			}
		}
	}
	assert.Equal(t, []string{"filled", "filled", "filled"}, states)
}

func TestFormsRemoved(t *testing.T) {
	h := newAPI(t)
	form := addressForm()
	h.seen(t, form)

	w := h.do(t, http.MethodPost, "/forms/removed", FormsRemovedRequest{Forms: []types.FormGlobalID{form.GlobalID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, h.mgr.FormCount())
}

func TestImportHTML(t *testing.T) {
	h := newAPI(t)
	page := `<form name="ship" action="/go">
		<label for="f">First</label><input id="f" name="first">
		<input name="last"><input name="city">
	</form>`

	req := httptest.NewRequest(http.MethodPost, "/forms/html?url=https://shop.example/checkout", strings.NewReader(page))
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[struct {
		Forms []*types.Form `json:"forms"`
	}](t, w)
	require.Len(t, body.Forms, 1)
	form := body.Forms[0]
	assert.Equal(t, "ship", form.Name)
	assert.Equal(t, "https://shop.example/go", form.Action)
	require.Len(t, form.Fields, 3)
	assert.Equal(t, types.NameFirst, form.Fields[0].Type)
	assert.Equal(t, "First", form.Fields[0].Label)
	assert.Equal(t, 1, h.mgr.FormCount())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newAPI(t)
	h.seen(t, addressForm())

	w := h.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "formfill_forms_cached 1")
}

func TestRemoveRecord(t *testing.T) {
	h := newAPI(t)
	form := addressForm()
	h.seen(t, form)
	first := form.Fields[0].GlobalID

	w := h.do(t, http.MethodPost, "/records/remove", RemoveRecordRequest{RecordGUID: testutil.Elvis().GUID})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPost, "/records/remove", RemoveRecordRequest{RecordGUID: testutil.Elvis().GUID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPost, "/records/remove", RemoveRecordRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/fill", FillRequest{Form: form, Field: first, RecordGUID: testutil.Elvis().GUID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.FillStatusRecordNotFound, decode[fillBody](t, w).Status)
}
