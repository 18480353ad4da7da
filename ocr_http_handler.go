package ocrtool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	uuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultMaxRequestBytes caps request bodies, matching the largest
// request size bucket of the metrics.
const DefaultMaxRequestBytes int64 = 50 << 20

// OcrHttpHandler decodes a JSON OcrRequest and answers with a JSON OcrResult.
type OcrHttpHandler struct {
	EngineConfig EngineConfig
	MaxBodyBytes int64
}

func NewOcrHttpHandler(engineConfig EngineConfig) *OcrHttpHandler {
	return &OcrHttpHandler{
		EngineConfig: engineConfig,
		MaxBodyBytes: DefaultMaxRequestBytes,
	}
}

func (s *OcrHttpHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	log.Debug().Str("component", "OCR_HTTP").Msg("serveHttp called")
	defer req.Body.Close()

	if req.Method != http.MethodPost {
		http.Error(w, "this endpoint only accepts POST requests", http.StatusMethodNotAllowed)
		return
	}
	req.Body = http.MaxBytesReader(w, req.Body, bodyLimit(s.MaxBodyBytes))

	ocrRequest := OcrRequest{}
	decoder := json.NewDecoder(req.Body)
	err := decoder.Decode(&ocrRequest)
	if err != nil {
		if isBodyTooLarge(err) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		log.Warn().Str("component", "OCR_HTTP").Err(err).
			Msg("did the client send a valid json?")
		http.Error(w, "Unable to unmarshal json", http.StatusBadRequest)
		return
	}

	ocrResult, err := HandleOcrRequest(req.Context(), ocrRequest, s.EngineConfig)

	if err != nil {
		msg := "Unable to perform OCR decode.  Error: %v"
		errMsg := fmt.Sprintf(msg, err)
		log.Error().Err(err).Str("component", "OCR_HTTP").Msg("Unable to perform OCR decode")
		http.Error(w, errMsg, httpStatusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	js, err := json.Marshal(ocrResult)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, err = w.Write(js)
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_HTTP").Msg("http write() failed")
	}
}

// HandleOcrRequest preprocesses the request image and decodes it in place
// with the requested engine.
func HandleOcrRequest(ctx context.Context, ocrRequest OcrRequest, engineConfig EngineConfig) (OcrResult, error) {

	var requestIDRaw, err = uuid.NewV4()
	if err != nil {
		return OcrResult{}, errors.Wrap(err, "generate request id")
	}
	requestID := requestIDRaw.String()
	ocrRequest.RequestID = requestID
	// set the context for zerolog, RequestID will be printed on each logging event
	logger := log.With().Str("RequestID", requestID).Logger()
	defer timeTrack(time.Now(), "request", "ocr request finished", requestID)

	if ocrRequest.OutputFormat == "" {
		ocrRequest.OutputFormat = OutputText
	}
	if ocrRequest.OutputFormat != OutputText && ocrRequest.OutputFormat != OutputPdf {
		return OcrResult{}, &InvalidInputError{Reason: fmt.Sprintf("unknown output_format %q", ocrRequest.OutputFormat)}
	}

	if err := RunPreprocessors(&ocrRequest, engineConfig); err != nil {
		logger.Error().Err(err).Str("component", "OCR_HTTP").Msg("Error preprocessing ocr request")
		return OcrResult{}, err
	}

	ocrEngine := NewOcrEngine(ocrRequest.EngineType)
	if ocrEngine == nil {
		return OcrResult{}, &InvalidInputError{Reason: fmt.Sprintf("unknown engine %d", ocrRequest.EngineType)}
	}

	ocrResult, err := ocrEngine.ProcessRequest(ctx, ocrRequest, engineConfig)
	observeEngine(ocrRequest.EngineType, err)
	if err != nil {
		logger.Error().Err(err).Str("component", "OCR_HTTP").Msg("Error processing ocr request")
		return OcrResult{}, err
	}
	ocrResult.ID = requestID

	logEvent := logger.Info().Str("component", "OCR_HTTP").Str("engine", ocrRequest.EngineType.String())
	logEvent.Dict("result", zerolog.Dict().Int("text_len", len(ocrResult.Text)).Int("pdf_len", len(ocrResult.Pdf))).
		Msg("ocr request done")

	return ocrResult, nil

}

func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCrop):
		return http.StatusBadRequest
	case errors.Is(err, ErrResourceUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrExternalEngine):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func bodyLimit(n int64) int64 {
	if n <= 0 {
		return DefaultMaxRequestBytes
	}
	return n
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
