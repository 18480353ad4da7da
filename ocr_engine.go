package ocrtool

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

type OcrEngineType int

const (
	EngineTesseract = OcrEngineType(iota)
	EngineGoTesseract
	EngineMock
)

// OutputFormat selects between recognized text and a searchable PDF.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputPdf  OutputFormat = "pdf"
)

// OcrRequest carries one image through the preprocessors into an engine.
// Exactly one of ImgBytes, ImgBase64 and ImgUrl is expected to be set.
type OcrRequest struct {
	ImgUrl       string                 `json:"img_url"`
	ImgBase64    string                 `json:"img_base64"`
	ImgBytes     []byte                 `json:"img_bytes,omitempty"`
	FileName     string                 `json:"file_name"`
	EngineType   OcrEngineType          `json:"engine"`
	EngineArgs   map[string]interface{} `json:"engine_args"`
	Crop         CropFractions          `json:"crop"`
	Binarize     bool                   `json:"binarize"`
	OutputFormat OutputFormat           `json:"output_format"`
	RequestID    string                 `json:"id"`
}

// OcrResult is what an engine returns. Pdf is only filled for pdf output.
type OcrResult struct {
	ID     string `json:"id,omitempty"`
	Text   string `json:"text"`
	Pdf    []byte `json:"pdf,omitempty"`
	Status string `json:"status"`
}

func newOcrResult(id string) OcrResult {
	return OcrResult{ID: id, Status: "processing"}
}

type OcrEngine interface {
	ProcessRequest(ctx context.Context, ocrRequest OcrRequest, engineConfig EngineConfig) (OcrResult, error)
}

func NewOcrEngine(engineType OcrEngineType) OcrEngine {
	switch engineType {
	case EngineMock:
		return &MockEngine{}
	case EngineTesseract:
		return &TesseractEngine{}
	case EngineGoTesseract:
		return &GoTesseractEngine{}
	}
	return nil
}

func (e OcrEngineType) String() string {
	switch e {
	case EngineMock:
		return "ENGINE_MOCK"
	case EngineTesseract:
		return "ENGINE_TESSERACT"
	case EngineGoTesseract:
		return "ENGINE_GO_TESSERACT"
	}
	return ""
}

// ParseOcrEngineType maps the names accepted on the command line and in JSON.
func ParseOcrEngineType(s string) (OcrEngineType, bool) {
	switch strings.ToUpper(s) {
	case "TESSERACT":
		return EngineTesseract, true
	case "GO_TESSERACT", "GOSSERACT":
		return EngineGoTesseract, true
	case "MOCK":
		return EngineMock, true
	}
	return EngineMock, false
}

func (e *OcrEngineType) UnmarshalJSON(b []byte) (err error) {

	var engineTypeStr string

	if err := json.Unmarshal(b, &engineTypeStr); err == nil {
		engineType, ok := ParseOcrEngineType(engineTypeStr)
		if !ok {
			log.Warn().Str("component", "OCR_ENGINE").Str("engineString", engineTypeStr).
				Msg("Unexpected OcrEngineType json")
		}
		*e = engineType
		return nil
	}

	// not a string .. maybe it's an int

	var engineTypeInt int
	if err := json.Unmarshal(b, &engineTypeInt); err == nil {
		*e = OcrEngineType(engineTypeInt)
		return nil
	} else {
		return err
	}

}
