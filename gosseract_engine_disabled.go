//go:build !gosseract

package ocrtool

import (
	"context"
	"errors"
)

var errGoTesseractNotCompiled = errors.New("binary was built without the gosseract tag")

const GoTesseractEnabled = false

type GoTesseractEngine struct {
}

func (g GoTesseractEngine) ProcessRequest(ctx context.Context, ocrRequest OcrRequest, engineConfig EngineConfig) (OcrResult, error) {
	return OcrResult{Status: "error"}, newExternalEngineError("gosseract", "", errGoTesseractNotCompiled)
}
