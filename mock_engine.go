package ocrtool

import (
	"context"
)

const MOCK_ENGINE_RESPONSE = "mock engine decoder response"

// MOCK_ENGINE_PDF is the smallest stream the mock hands out for pdf requests.
var MOCK_ENGINE_PDF = []byte("%PDF-1.4\n%mock\n%%EOF\n")

type MockEngine struct {
}

// ProcessRequest answers without looking at the image.
func (m MockEngine) ProcessRequest(ctx context.Context, ocrRequest OcrRequest, engineConfig EngineConfig) (OcrResult, error) {
	ocrResult := newOcrResult(ocrRequest.RequestID)
	if err := ctx.Err(); err != nil {
		ocrResult.Status = "error"
		return ocrResult, newExternalEngineError("mock", "", err)
	}
	if ocrRequest.OutputFormat == OutputPdf {
		ocrResult.Pdf = append([]byte(nil), MOCK_ENGINE_PDF...)
	} else {
		ocrResult.Text = MOCK_ENGINE_RESPONSE
	}
	ocrResult.Status = "done"
	return ocrResult, nil
}
