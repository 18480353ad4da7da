package ocrtool

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func TestPreprocessorNames(t *testing.T) {
	ocrRequest := OcrRequest{}
	assert.Equals(t, len(preprocessorNames(&ocrRequest)), 1)
	assert.Equals(t, preprocessorNames(&ocrRequest)[0], PreprocessorIdentity)

	ocrRequest.Binarize = true
	ocrRequest.Crop = UniformCrop(0.1)
	names := preprocessorNames(&ocrRequest)
	assert.Equals(t, len(names), 2)
	assert.Equals(t, names[0], PreprocessorCrop)
	assert.Equals(t, names[1], PreprocessorBinarize)

	_, err := NewPreprocessor("stroke-width-transform", DefaultEngineConfig())
	assert.False(t, err == nil)
}

func TestRunPreprocessorsCropAndBinarize(t *testing.T) {
	imgBytes, err := EncodePNG(squareBitmap(100, 100, 45, 45, 10))
	assert.True(t, err == nil)

	ocrRequest := OcrRequest{
		ImgBase64: base64.StdEncoding.EncodeToString(imgBytes),
		Crop:      UniformCrop(0.1),
		Binarize:  true,
	}
	assert.True(t, RunPreprocessors(&ocrRequest, DefaultEngineConfig()) == nil)
	assert.Equals(t, ocrRequest.ImgBase64, "")

	out, err := DecodeBitmap(bytes.NewReader(ocrRequest.ImgBytes))
	assert.True(t, err == nil)
	assert.Equals(t, out.Width, 80)
	assert.Equals(t, out.Height, 80)
	assert.Equals(t, countValue(out, 0), 100)
	assert.Equals(t, countValue(out, 255), 80*80-100)
}

func TestRunPreprocessorsIdentity(t *testing.T) {
	imgBytes, err := EncodePNG(colorBitmap(10, 10))
	assert.True(t, err == nil)
	ocrRequest := OcrRequest{ImgBytes: imgBytes}
	assert.True(t, RunPreprocessors(&ocrRequest, DefaultEngineConfig()) == nil)
	assert.True(t, bytes.Equal(ocrRequest.ImgBytes, imgBytes))
}

func TestRunPreprocessorsErrors(t *testing.T) {
	ocrRequest := OcrRequest{Crop: CropFractions{Bottom: 0.4}}
	err := RunPreprocessors(&ocrRequest, DefaultEngineConfig())
	assert.True(t, errors.Is(err, ErrInvalidCrop))

	ocrRequest = OcrRequest{ImgBase64: "!!not base64!!", Binarize: true}
	err = RunPreprocessors(&ocrRequest, DefaultEngineConfig())
	assert.True(t, errors.Is(err, ErrInvalidInput))

	ocrRequest = OcrRequest{Binarize: true}
	err = RunPreprocessors(&ocrRequest, DefaultEngineConfig())
	assert.True(t, errors.Is(err, ErrInvalidInput))

	ocrRequest = OcrRequest{ImgBytes: []byte("plain text"), Binarize: true}
	err = RunPreprocessors(&ocrRequest, DefaultEngineConfig())
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
}
