//go:build gosseract

package ocrtool

import (
	"context"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const GoTesseractEnabled = true

// GoTesseractEngine links libtesseract through gosseract. It only produces
// text, pdf requests fail.
type GoTesseractEngine struct {
}

func (g GoTesseractEngine) ProcessRequest(ctx context.Context, ocrRequest OcrRequest, engineConfig EngineConfig) (OcrResult, error) {
	if ocrRequest.OutputFormat == OutputPdf {
		return OcrResult{Status: "error"}, newExternalEngineError("gosseract", "pdf output is not supported", nil)
	}

	imgBytes, err := requestImageBytes(ocrRequest)
	if err != nil {
		return OcrResult{Status: "error"}, err
	}

	engineArgs, err := NewTesseractEngineArgs(ocrRequest, engineConfig)
	if err != nil {
		return OcrResult{Status: "error"}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(engineArgs.lang); err != nil {
		return OcrResult{Status: "error"}, newExternalEngineError("gosseract", "", errors.Wrap(err, "set language"))
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(engineArgs.pageSegMode)); err != nil {
		return OcrResult{Status: "error"}, newExternalEngineError("gosseract", "", errors.Wrap(err, "set page segmentation mode"))
	}
	for k, v := range engineArgs.configVars {
		if err := client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return OcrResult{Status: "error"}, newExternalEngineError("gosseract", "", errors.Wrapf(err, "set variable %s", k))
		}
	}
	if err := client.SetImageFromBytes(imgBytes); err != nil {
		return OcrResult{Status: "error"}, newExternalEngineError("gosseract", "", errors.Wrap(err, "set image"))
	}

	if err := ctx.Err(); err != nil {
		return OcrResult{Status: "error"}, err
	}

	text, err := client.Text()
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_GOSSERACT").Msg("recognition failed")
		return OcrResult{Status: "error"}, newExternalEngineError("gosseract", "", err)
	}

	return OcrResult{Text: text, Status: "done"}, nil
}
