package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formfill/internal/infrastructure/config"
)

const recordsYAML = `
addresses:
  - guid: addr-1
    first_name: Elvis
    last_name: Presley
    city: Memphis
    country_code: US
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.RateLimit.Enabled = false

	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte(recordsYAML), 0o600))
	cfg.Autofill.StoreFile = path
	return cfg
}

func TestNewServerServesHealth(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestNewServerExposesMetrics(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "formfill_forms_cached")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestNewServerWithPlusAddress(t *testing.T) {
	cfg := testConfig(t)
	cfg.PlusAddress.URL = "http://127.0.0.1:1"

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"breaker":"closed"`)
}

func TestNewServerRejectsMissingStoreFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Autofill.StoreFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewServer(cfg)
	assert.ErrorContains(t, err, "failed to load records")
}
