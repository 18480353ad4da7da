package ocrtool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/couchbaselabs/go.assert"
	"github.com/rs/zerolog/log"
)

func TestOcrEngineTypeJson(t *testing.T) {

	testJson := `{"img_url":"foo", "engine":"tesseract"}`
	ocrRequest := OcrRequest{}
	err := json.Unmarshal([]byte(testJson), &ocrRequest)
	if err != nil {
		log.Error().Err(err).Str("component", "TEST").Msg("unmarshal failed")
	}
	assert.True(t, err == nil)
	assert.Equals(t, ocrRequest.EngineType, EngineTesseract)
	log.Info().Str("component", "TEST").Interface("ocrRequest", ocrRequest).Msg("parsed")

}

func TestOcrEngineTypeJsonVariants(t *testing.T) {
	cases := map[string]OcrEngineType{
		`{"engine":"MOCK"}`:         EngineMock,
		`{"engine":"go_tesseract"}`: EngineGoTesseract,
		`{"engine":2}`:              EngineMock,
		`{"engine":0}`:              EngineTesseract,
		`{"engine":"no_such"}`:      EngineMock,
	}
	for testJson, want := range cases {
		ocrRequest := OcrRequest{}
		assert.True(t, json.Unmarshal([]byte(testJson), &ocrRequest) == nil)
		assert.Equals(t, ocrRequest.EngineType, want)
	}

	ocrRequest := OcrRequest{}
	assert.False(t, json.Unmarshal([]byte(`{"engine":true}`), &ocrRequest) == nil)
}

func TestOcrRequestJsonCropAndFormat(t *testing.T) {
	testJson := `{"img_base64":"AAAA", "engine":"mock", "crop":{"top":0.1,"left":0.2}, "binarize":true, "output_format":"pdf"}`
	ocrRequest := OcrRequest{}
	assert.True(t, json.Unmarshal([]byte(testJson), &ocrRequest) == nil)
	assert.Equals(t, ocrRequest.Crop, CropFractions{Top: 0.1, Left: 0.2})
	assert.True(t, ocrRequest.Binarize)
	assert.Equals(t, ocrRequest.OutputFormat, OutputPdf)
}

func TestNewOcrEngine(t *testing.T) {
	assert.True(t, NewOcrEngine(EngineTesseract) != nil)
	assert.True(t, NewOcrEngine(EngineGoTesseract) != nil)
	assert.True(t, NewOcrEngine(EngineMock) != nil)
	assert.True(t, NewOcrEngine(OcrEngineType(42)) == nil)
	assert.Equals(t, EngineMock.String(), "ENGINE_MOCK")
}

func TestMockEngine(t *testing.T) {
	engine := MockEngine{}
	result, err := engine.ProcessRequest(context.Background(), OcrRequest{}, DefaultEngineConfig())
	assert.True(t, err == nil)
	assert.Equals(t, result.Text, MOCK_ENGINE_RESPONSE)

	result, err = engine.ProcessRequest(context.Background(), OcrRequest{OutputFormat: OutputPdf}, DefaultEngineConfig())
	assert.True(t, err == nil)
	assert.Equals(t, string(result.Pdf), string(MOCK_ENGINE_PDF))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.ProcessRequest(ctx, OcrRequest{}, DefaultEngineConfig())
	assert.False(t, err == nil)
}
