package ocrtool

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"os"
	"os/exec"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
)

// This variant of the TesseractEngine calls tesseract via exec
type TesseractEngine struct {
}

type TesseractEngineArgs struct {
	configVars  map[string]string
	pageSegMode PageSegMode
	engineMode  int
	lang        string
	outputPdf   bool
	saveFiles   bool
}

// NewTesseractEngineArgs starts from the engine config and applies the
// per-request overrides found in EngineArgs.
func NewTesseractEngineArgs(ocrRequest OcrRequest, engineConfig EngineConfig) (*TesseractEngineArgs, error) {

	engineArgs := &TesseractEngineArgs{
		pageSegMode: engineConfig.PageSegMode,
		engineMode:  engineConfig.EngineMode,
		lang:        engineConfig.Language,
		outputPdf:   ocrRequest.OutputFormat == OutputPdf,
		saveFiles:   engineConfig.SaveFiles,
	}

	if ocrRequest.EngineArgs == nil {
		return engineArgs, engineArgs.validate()
	}

	// config vars
	configVarsMapInterfaceOrig := ocrRequest.EngineArgs["config_vars"]

	if configVarsMapInterfaceOrig != nil {

		log.Debug().Str("component", "OCR_TESSERACT").
			Interface("configVarsMapInterfaceOrig", configVarsMapInterfaceOrig).Msg("got configVarsMap")

		configVarsMapInterface, ok := configVarsMapInterfaceOrig.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("could not convert config_vars into map: %v", configVarsMapInterfaceOrig)
		}

		configVarsMap := make(map[string]string)
		for k, v := range configVarsMapInterface {
			v, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("could not convert configVar into string: %v", v)
			}
			configVarsMap[k] = v
		}

		engineArgs.configVars = configVarsMap

	}

	// page seg mode, either "6" or 6
	switch pageSegMode := ocrRequest.EngineArgs["psm"].(type) {
	case nil:
	case string:
		psm, err := ParsePageSegMode(pageSegMode)
		if err != nil {
			return nil, err
		}
		engineArgs.pageSegMode = psm
	case float64:
		if pageSegMode != math.Trunc(pageSegMode) {
			return nil, fmt.Errorf("page segmentation mode %v is not a whole number", pageSegMode)
		}
		engineArgs.pageSegMode = PageSegMode(int(pageSegMode))
	case int:
		engineArgs.pageSegMode = PageSegMode(pageSegMode)
	default:
		return nil, fmt.Errorf("could not convert psm into page segmentation mode: %v", pageSegMode)
	}

	// language
	lang := ocrRequest.EngineArgs["lang"]
	if lang != nil {
		langStr, ok := lang.(string)
		if !ok {
			return nil, fmt.Errorf("could not convert lang into string: %v", lang)
		}
		engineArgs.lang = langStr
	}

	return engineArgs, engineArgs.validate()

}

func (t TesseractEngineArgs) validate() error {
	if !t.pageSegMode.Valid() {
		return fmt.Errorf("page segmentation mode %d outside [0, 13]", t.pageSegMode)
	}
	return nil
}

// return a slice that can be passed to tesseract binary as command line
// args, eg, ["--oem", "1", "--psm", "3", "-l", "nld", "-c", "foo=bar", "pdf"]
func (t TesseractEngineArgs) Export() []string {
	var result []string
	result = append(result, "--oem", strconv.Itoa(t.engineMode))
	result = append(result, "--psm", t.pageSegMode.String())
	if t.lang != "" {
		result = append(result, "-l", t.lang)
	}

	keys := make([]string, 0, len(t.configVars))
	for k := range t.configVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		result = append(result, "-c", fmt.Sprintf("%s=%s", k, t.configVars[k]))
	}

	if t.outputPdf {
		result = append(result, "pdf")
	}
	return result
}

// ProcessRequest runs tesseract on the request image and returns either the
// recognized text or the generated PDF.
func (t TesseractEngine) ProcessRequest(ctx context.Context, ocrRequest OcrRequest, engineConfig EngineConfig) (OcrResult, error) {

	tmpFileName, err := func() (string, error) {
		switch {
		case ocrRequest.ImgBase64 != "":
			return t.tmpFileFromImageBase64(ocrRequest.ImgBase64)
		case ocrRequest.ImgUrl != "":
			return t.tmpFileFromImageUrl(ocrRequest.ImgUrl)
		default:
			return t.tmpFileFromImageBytes(ocrRequest.ImgBytes)
		}
	}()

	if err != nil {
		log.Error().Err(err).Str("component", "OCR_TESSERACT").Msg("error getting tmpFileName")
		return OcrResult{Status: "error"}, err
	}

	engineArgs, err := NewTesseractEngineArgs(ocrRequest, engineConfig)
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_TESSERACT").Caller().Msg("error getting engineArgs")
		return OcrResult{Status: "error"}, err
	}

	if !engineArgs.saveFiles {
		defer removeTempFile(tmpFileName)
	}

	binary := engineConfig.TesseractPath
	if binary == "" {
		binary = "tesseract"
	}

	return t.processImageFile(ctx, binary, tmpFileName, *engineArgs)

}

func (t TesseractEngine) tmpFileFromImageBytes(imgBytes []byte) (string, error) {

	log.Debug().Str("component", "OCR_TESSERACT").Msg("Use tesseract with bytes image")

	if len(imgBytes) == 0 {
		return "", &InvalidInputError{Reason: "no image bytes in request"}
	}

	tmpFileName, err := createTempFileName("")
	if err != nil {
		return "", err
	}

	// tesseract reads its input from disk
	err = saveBytesToFileName(imgBytes, tmpFileName)
	if err != nil {
		return "", newResourceUnavailableError(tmpFileName, err)
	}

	return tmpFileName, nil

}

func (t TesseractEngine) tmpFileFromImageBase64(base64Image string) (string, error) {

	log.Debug().Str("component", "OCR_TESSERACT").Msg("Use tesseract with base 64")

	decoded, err := base64.StdEncoding.DecodeString(base64Image)
	if err != nil {
		return "", &InvalidInputError{Reason: "img_base64 is not valid base64"}
	}

	return t.tmpFileFromImageBytes(decoded)

}

func (t TesseractEngine) tmpFileFromImageUrl(imgUrl string) (string, error) {

	log.Debug().Str("component", "OCR_TESSERACT").Msg("Use tesseract with url")

	tmpFileName, err := createTempFileName("")
	if err != nil {
		return "", err
	}
	err = saveUrlContentToFileName(imgUrl, tmpFileName)
	if err != nil {
		return "", newResourceUnavailableError(imgUrl, err)
	}

	return tmpFileName, nil

}

func (t TesseractEngine) processImageFile(ctx context.Context, binary string, inputFilename string, engineArgs TesseractEngineArgs) (OcrResult, error) {

	// if the input filename is /tmp/ocrimage, set the output file basename
	// to /tmp/ocrimage as well, which will produce /tmp/ocrimage.txt output
	tmpOutFileBaseName := inputFilename

	fileExtensions := []string{"txt"}
	if engineArgs.outputPdf {
		fileExtensions = []string{"pdf"}
	}

	// build args array
	cmdArgs := []string{inputFilename, tmpOutFileBaseName}
	cmdArgs = append(cmdArgs, engineArgs.Export()...)
	log.Info().Str("component", "OCR_TESSERACT").Strs("cmdArgs", cmdArgs).Msg("exec tesseract")

	// exec tesseract
	cmd := exec.CommandContext(ctx, binary, cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_TESSERACT").Msg(string(output))
		return OcrResult{Status: "error"}, newExternalEngineError("tesseract", string(output), err)
	}

	outBytes, outFile, err := findAndReadOutfile(tmpOutFileBaseName, fileExtensions)

	// delete output file when we are done
	if !engineArgs.saveFiles && outFile != "" {
		defer removeTempFile(outFile)
	}
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_TESSERACT").
			Str("file_name", tmpOutFileBaseName).Msg("Error getting data from out file")
		return OcrResult{Status: "error"}, newExternalEngineError("tesseract", "", err)
	}

	if engineArgs.outputPdf {
		if len(outBytes) == 0 {
			return OcrResult{Status: "error"}, newExternalEngineError("tesseract", "empty pdf", nil)
		}
		return OcrResult{Pdf: outBytes, Status: "done"}, nil
	}

	return OcrResult{
		Text:   string(outBytes),
		Status: "done",
	}, nil

}

func findOutfile(outfileBaseName string, fileExtensions []string) (string, error) {

	for _, fileExtension := range fileExtensions {

		outFile := fmt.Sprintf("%v.%v", outfileBaseName, fileExtension)
		log.Debug().Str("component", "OCR_TESSERACT").Str("outFile", outFile).
			Msg("check if file exists")

		if _, err := os.Stat(outFile); err == nil {
			return outFile, nil
		}

	}

	return "", fmt.Errorf("could not find outfile. Basename: %v Extensions: %v", outfileBaseName, fileExtensions)

}

func findAndReadOutfile(outfileBaseName string, fileExtensions []string) (outBytes []byte, outfile string, err error) {

	outfile, err = findOutfile(outfileBaseName, fileExtensions)
	if err != nil {
		return nil, "", err
	}
	outBytes, err = os.ReadFile(outfile)
	if err != nil {
		return nil, outfile, err
	}
	return outBytes, outfile, nil

}
