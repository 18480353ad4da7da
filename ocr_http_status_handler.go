package ocrtool

import (
	"encoding/json"
	"net/http"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// ServiceStatus tells clients which engines this instance can run.
type ServiceStatus struct {
	Status      string          `json:"status"`
	Engines     map[string]bool `json:"engines"`
	Language    string          `json:"lang"`
	PageSegMode PageSegMode     `json:"psm"`
}

type OcrHttpStatusHandler struct {
	EngineConfig EngineConfig
	lookPath     func(file string) (string, error)
}

func NewOcrHttpStatusHandler(engineConfig EngineConfig) *OcrHttpStatusHandler {
	return &OcrHttpStatusHandler{EngineConfig: engineConfig, lookPath: exec.LookPath}
}

// CurrentStatus probes the tesseract binary on every call so a later install
// is picked up without a restart.
func (s *OcrHttpStatusHandler) CurrentStatus() ServiceStatus {
	_, err := s.lookPath(s.EngineConfig.TesseractPath)
	tesseractFound := err == nil
	if !tesseractFound {
		log.Warn().Err(err).Str("component", "OCR_STATUS").Str("tesseract", s.EngineConfig.TesseractPath).
			Msg("tesseract binary not found")
	}

	status := "RUNNING"
	if !tesseractFound && !GoTesseractEnabled {
		status = "DEGRADED"
	}
	return ServiceStatus{
		Status: status,
		Engines: map[string]bool{
			"tesseract":    tesseractFound,
			"go_tesseract": GoTesseractEnabled,
			"mock":         true,
		},
		Language:    s.EngineConfig.Language,
		PageSegMode: s.EngineConfig.PageSegMode,
	}
}

func (s *OcrHttpStatusHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {

	log.Debug().Str("component", "OCR_STATUS").Msg("serveHttp called")

	if req.Method != http.MethodGet {
		http.Error(w, "this endpoint only accepts GET requests", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	js, err := json.Marshal(s.CurrentStatus())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, err = w.Write(js)
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_STATUS").Msg("http write() failed")
	}
}
