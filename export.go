package ocrtool

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// JsonExport is the document written by SaveJSON.
type JsonExport struct {
	FileName string `json:"file_name"`
	Date     string `json:"date"`
	Text     string `json:"text"`
}

// NewJsonExport stamps text with the source file name and the given time.
func NewJsonExport(sourcePath string, text string, at time.Time) JsonExport {
	return JsonExport{
		FileName: filepath.Base(sourcePath),
		Date:     at.Format(time.RFC3339),
		Text:     text,
	}
}

// SaveText writes the OCR text verbatim as UTF-8.
func SaveText(path string, text string) error {
	return writeExport(path, []byte(text), "txt")
}

// SaveJSON writes {file_name, date, text}.
func SaveJSON(path string, export JsonExport) error {
	content, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal json export")
	}
	return writeExport(path, content, "json")
}

// SaveImage writes b as a JPEG carrying 300x300 DPI.
func SaveImage(path string, b Bitmap) error {
	content, err := EncodeJPEG(b, ExportDPI)
	if err != nil {
		return err
	}
	return writeExport(path, content, "jpg")
}

// SavePDF writes the engine's PDF bytes verbatim.
func SavePDF(path string, pdf []byte) error {
	if len(pdf) == 0 {
		return newExternalEngineError("pdf", "no pdf data to save", nil)
	}
	return writeExport(path, pdf, "pdf")
}

func writeExport(path string, content []byte, kind string) error {
	if err := os.WriteFile(path, content, 0644); err != nil {
		log.Error().Err(err).Str("component", "OCR_EXPORT").Str("file_name", path).Msg("export failed")
		return newResourceUnavailableError(path, err)
	}
	log.Info().Str("component", "OCR_EXPORT").Str("kind", kind).Str("file_name", path).
		Int("bytes", len(content)).Msg("saved")
	return nil
}
