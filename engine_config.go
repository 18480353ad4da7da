package ocrtool

import (
	"flag"

	"github.com/pkg/errors"
)

const (
	// DefaultLanguage is the tesseract language code used when none is given.
	DefaultLanguage = "nld"
	// OemLstmOnly selects the LSTM recognizer.
	OemLstmOnly = 1
)

type EngineConfig struct {
	TesseractPath string
	Language      string
	PageSegMode   PageSegMode
	EngineMode    int
	DenoiseKernel int
	SaveFiles     bool
}

func DefaultEngineConfig() EngineConfig {

	engineConfig := EngineConfig{
		TesseractPath: "tesseract",
		Language:      DefaultLanguage,
		PageSegMode:   DefaultPageSegMode,
		EngineMode:    OemLstmOnly,
		DenoiseKernel: DefaultDenoiseKernel,
		SaveFiles:     false,
	}
	return engineConfig

}

// Validate rejects values the engine or the pipeline cannot use.
func (c EngineConfig) Validate() error {
	if !c.PageSegMode.Valid() {
		return errors.Errorf("page segmentation mode %d outside [0, 13]", c.PageSegMode)
	}
	if c.Language == "" {
		return errors.New("language must not be empty")
	}
	if c.DenoiseKernel <= 0 || c.DenoiseKernel%2 == 0 {
		return errors.Errorf("denoise kernel %d must be odd and positive", c.DenoiseKernel)
	}
	return nil
}

type FlagFunctionEngine func()

func NoOpFlagFunctionEngine() FlagFunctionEngine {
	return func() {}
}

// registerEngineFlags binds the engine flags onto the default flag set. The
// returned function copies the parsed values into the config.
func registerEngineFlags(engineConfig *EngineConfig) func() error {
	var (
		tesseractPath string
		language      string
		psm           int
		denoiseKernel int
		saveFiles     bool
	)
	flag.StringVar(
		&tesseractPath,
		"tesseract",
		engineConfig.TesseractPath,
		"path of the tesseract binary",
	)
	flag.StringVar(
		&language,
		"lang",
		engineConfig.Language,
		"tesseract language code, eg: nld, eng, deu+eng",
	)
	flag.IntVar(
		&psm,
		"psm",
		int(engineConfig.PageSegMode),
		"page segmentation mode 0-13",
	)
	flag.IntVar(
		&denoiseKernel,
		"denoise_kernel",
		engineConfig.DenoiseKernel,
		"gaussian kernel size of the denoise stage, odd",
	)
	flag.BoolVar(
		&saveFiles,
		"save_files",
		false,
		"if set there will be no clean up of temporary files",
	)

	return func() error {
		if len(tesseractPath) > 0 {
			engineConfig.TesseractPath = tesseractPath
		}
		if len(language) > 0 {
			engineConfig.Language = language
		}
		engineConfig.PageSegMode = PageSegMode(psm)
		engineConfig.DenoiseKernel = denoiseKernel
		engineConfig.SaveFiles = saveFiles
		return engineConfig.Validate()
	}
}

func DefaultConfigFlagsEngineOverride(flagFunction FlagFunctionEngine) (EngineConfig, error) {
	engineConfig := DefaultEngineConfig()

	flagFunction()
	apply := registerEngineFlags(&engineConfig)

	flag.Parse()

	return engineConfig, apply()
}
