package ocrtool

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	PreprocessorIdentity = "identity"
	PreprocessorCrop     = "crop"
	PreprocessorBinarize = "binarize"
)

// Preprocessor rewrites the image of a request before it reaches an engine.
type Preprocessor interface {
	preprocess(ocrRequest *OcrRequest) error
}

type IdentityPreprocessor struct{}

func (IdentityPreprocessor) preprocess(ocrRequest *OcrRequest) error {
	return nil
}

// CropPreprocessor cuts the request's crop fractions off the image.
type CropPreprocessor struct{}

func (CropPreprocessor) preprocess(ocrRequest *OcrRequest) error {
	return transformRequestImage(ocrRequest, PreprocessorCrop, func(b Bitmap) (Bitmap, error) {
		return Crop(b, ocrRequest.Crop)
	})
}

// BinarizePreprocessor runs the full binarization pipeline.
type BinarizePreprocessor struct {
	Options PipelineOptions
}

func (p BinarizePreprocessor) preprocess(ocrRequest *OcrRequest) error {
	return transformRequestImage(ocrRequest, PreprocessorBinarize, func(b Bitmap) (Bitmap, error) {
		return ProcessWithOptions(b, p.Options)
	})
}

func NewPreprocessor(name string, engineConfig EngineConfig) (Preprocessor, error) {
	switch name {
	case PreprocessorIdentity:
		return IdentityPreprocessor{}, nil
	case PreprocessorCrop:
		return CropPreprocessor{}, nil
	case PreprocessorBinarize:
		return BinarizePreprocessor{Options: PipelineOptions{DenoiseKernel: engineConfig.DenoiseKernel}}, nil
	}
	return nil, fmt.Errorf("unknown preprocessor %q", name)
}

// preprocessorNames lists the preprocessors a request asks for, always
// cropping before binarizing.
func preprocessorNames(ocrRequest *OcrRequest) []string {
	var names []string
	if !ocrRequest.Crop.IsZero() {
		names = append(names, PreprocessorCrop)
	}
	if ocrRequest.Binarize {
		names = append(names, PreprocessorBinarize)
	}
	if len(names) == 0 {
		names = append(names, PreprocessorIdentity)
	}
	return names
}

// RunPreprocessors applies the preprocessors requested by ocrRequest in place.
func RunPreprocessors(ocrRequest *OcrRequest, engineConfig EngineConfig) error {
	if err := ocrRequest.Crop.Validate(); err != nil {
		return &InvalidCropError{Fractions: ocrRequest.Crop, Cause: err}
	}
	for _, name := range preprocessorNames(ocrRequest) {
		preprocessor, err := NewPreprocessor(name, engineConfig)
		if err != nil {
			return err
		}
		start := time.Now()
		if err := preprocessor.preprocess(ocrRequest); err != nil {
			log.Error().Err(err).Str("component", "OCR_PREPROCESSOR").Str("preprocessor", name).
				Str("RequestID", ocrRequest.RequestID).Msg("preprocessing failed")
			return err
		}
		preprocessDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
	return nil
}

func transformRequestImage(ocrRequest *OcrRequest, name string, transform func(Bitmap) (Bitmap, error)) error {
	imgBytes, err := requestImageBytes(*ocrRequest)
	if err != nil {
		return err
	}
	b, err := DecodeBitmap(bytes.NewReader(imgBytes))
	if err != nil {
		return err
	}
	out, err := transform(b)
	if err != nil {
		return err
	}
	encoded, err := EncodePNG(out)
	if err != nil {
		return err
	}

	log.Debug().Str("component", "OCR_PREPROCESSOR").Str("preprocessor", name).
		Int("width", out.Width).Int("height", out.Height).Msg("image transformed")

	ocrRequest.ImgBytes = encoded
	ocrRequest.ImgBase64 = ""
	ocrRequest.ImgUrl = ""
	return nil
}

// requestImageBytes resolves whichever image source the request carries.
func requestImageBytes(ocrRequest OcrRequest) ([]byte, error) {
	switch {
	case ocrRequest.ImgBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(ocrRequest.ImgBase64)
		if err != nil {
			return nil, &InvalidInputError{Reason: "img_base64 is not valid base64"}
		}
		return decoded, nil
	case ocrRequest.ImgUrl != "":
		content, err := url2bytes(ocrRequest.ImgUrl)
		if err != nil {
			return nil, newResourceUnavailableError(ocrRequest.ImgUrl, err)
		}
		return content, nil
	case len(ocrRequest.ImgBytes) > 0:
		return ocrRequest.ImgBytes, nil
	}
	return nil, &InvalidInputError{Reason: "request carries no image"}
}
