package ocrtool

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func TestOcrHttpStatusHandler(t *testing.T) {
	handler := NewOcrHttpStatusHandler(DefaultEngineConfig())
	handler.lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equals(t, rec.Code, http.StatusOK)

	status := ServiceStatus{}
	assert.True(t, json.Unmarshal(rec.Body.Bytes(), &status) == nil)
	assert.Equals(t, status.Status, "RUNNING")
	assert.True(t, status.Engines["tesseract"])
	assert.True(t, status.Engines["mock"])
	assert.Equals(t, status.Language, DefaultLanguage)
	assert.Equals(t, status.PageSegMode, DefaultPageSegMode)
}

func TestOcrHttpStatusHandlerWithoutTesseract(t *testing.T) {
	handler := NewOcrHttpStatusHandler(DefaultEngineConfig())
	handler.lookPath = func(file string) (string, error) { return "", errors.New("not found") }

	status := handler.CurrentStatus()
	assert.False(t, status.Engines["tesseract"])
	if !GoTesseractEnabled {
		assert.Equals(t, status.Status, "DEGRADED")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equals(t, rec.Code, http.StatusMethodNotAllowed)
}
