package ocrtool

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// OcrHttpMultipartHandler accepts a multipart body made of an optional JSON
// part with the request options followed by the image part. The answer is
// plain text, or the PDF itself when a pdf output was requested.
type OcrHttpMultipartHandler struct {
	EngineConfig EngineConfig
	MaxBodyBytes int64
}

func NewOcrHttpMultipartHandler(engineConfig EngineConfig) *OcrHttpMultipartHandler {
	return &OcrHttpMultipartHandler{
		EngineConfig: engineConfig,
		MaxBodyBytes: DefaultMaxRequestBytes,
	}
}

func (*OcrHttpMultipartHandler) extractParts(req *http.Request) (OcrRequest, error) {

	log.Debug().Str("component", "OCR_HTTP").Msg("request to ocr-file-upload")
	ocrReq := OcrRequest{}

	if req.Method != http.MethodPost {
		return ocrReq, fmt.Errorf("this endpoint only accepts POST requests")
	}

	contentType, attrs, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil {
		return ocrReq, fmt.Errorf("bad content type: %v", err)
	}
	log.Debug().Str("component", "OCR_HTTP").Str("content_type", contentType).Msg("content type")

	if contentType != "multipart/related" && contentType != "multipart/form-data" {
		return ocrReq, fmt.Errorf("expected multipart/related or multipart/form-data")
	}

	reader := multipart.NewReader(req.Body, attrs["boundary"])

	for {

		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ocrReq, fmt.Errorf("failed to read mime part: %w", err)
		}

		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))

		switch {
		case partType == "application/json":
			decoder := json.NewDecoder(part)
			err := decoder.Decode(&ocrReq)
			part.Close()
			if err != nil {
				return ocrReq, fmt.Errorf("unable to unmarshal json: %w", err)
			}
		case strings.HasPrefix(partType, "image"):
			partContents, err := io.ReadAll(part)
			part.Close()
			if err != nil {
				return ocrReq, fmt.Errorf("failed to read mime part: %w", err)
			}
			ocrReq.ImgBytes = partContents
			if ocrReq.FileName == "" {
				ocrReq.FileName = part.FileName()
			}
			return ocrReq, nil
		default:
			part.Close()
			return ocrReq, fmt.Errorf("expected content-type: image/* or application/json, got %q", partType)
		}

	}

	return ocrReq, fmt.Errorf("no image part found")

}

func (s *OcrHttpMultipartHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Warn().Err(err).Caller().Str("component", "OCR_HTTP").Msg(req.RequestURI + " request Body could not be closed")
		}
	}(req.Body)

	req.Body = http.MaxBytesReader(w, req.Body, bodyLimit(s.MaxBodyBytes))
	ocrRequest, err := s.extractParts(req)
	if err != nil && isBodyTooLarge(err) {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_HTTP").Msg("multipart extraction failed")
		errStr := fmt.Sprintf("Error extracting multipart parts: %v", err)
		http.Error(w, errStr, http.StatusBadRequest)
		return
	}

	ocrResult, err := HandleOcrRequest(req.Context(), ocrRequest, s.EngineConfig)
	if err != nil {
		msg := fmt.Sprintf("Unable to perform OCR decode. Error: %v", err)
		log.Error().Err(err).Str("component", "OCR_HTTP").Msg("Unable to perform OCR decode")
		http.Error(w, msg, httpStatusFor(err))
		return
	}

	if len(ocrResult.Pdf) > 0 {
		w.Header().Set("Content-Type", "application/pdf")
		_, err = w.Write(ocrResult.Pdf)
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err = io.WriteString(w, ocrResult.Text)
	}
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_HTTP").Msg("http write() failed")
	}

}
