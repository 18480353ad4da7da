package ocrtool

import (
	"flag"

	"github.com/pkg/errors"
)

// ToolConfig drives a one-shot run of cli-ocrtool.
type ToolConfig struct {
	Engine     EngineConfig
	EngineType OcrEngineType
	ImagePath  string
	FolderPath string
	Crop       CropFractions
	CropAll    float64
	Binarize   bool
	OutText    string
	OutJson    string
	OutPdf     string
	OutImage   string
	Debug      bool
}

func DefaultToolConfig() ToolConfig {

	toolConfig := ToolConfig{
		Engine:     DefaultEngineConfig(),
		EngineType: EngineTesseract,
		Binarize:   false,
		Debug:      false,
	}
	return toolConfig

}

// Fractions resolves the per-edge and "all" crop settings. A non zero "all"
// value wins, like the all-edges slider.
func (c ToolConfig) Fractions() CropFractions {
	if c.CropAll > 0 {
		return UniformCrop(c.CropAll)
	}
	return c.Crop
}

func (c ToolConfig) Validate() error {
	if (c.ImagePath == "") == (c.FolderPath == "") {
		return errors.New("exactly one of -image and -folder must be given")
	}
	if err := c.Fractions().Validate(); err != nil {
		return errors.Wrap(err, "crop")
	}
	if c.FolderPath != "" && (c.OutText != "" || c.OutJson != "" || c.OutPdf != "" || c.OutImage != "") {
		return errors.New("output paths apply to a single image; folder runs write next to each image")
	}
	return c.Engine.Validate()
}

type FlagFunctionTool func()

func NoOpFlagFunctionTool() FlagFunctionTool {
	return func() {}
}

func DefaultConfigFlagsToolOverride(flagFunction FlagFunctionTool) (ToolConfig, error) {
	toolConfig := DefaultToolConfig()

	flagFunction()
	var (
		engine string
	)
	flag.StringVar(&toolConfig.ImagePath, "image", "", "image file to process")
	flag.StringVar(&toolConfig.FolderPath, "folder", "", "folder whose images are processed in name order")
	flag.Float64Var(&toolConfig.Crop.Top, "crop_top", 0, "fraction cut from the top edge, 0-0.25")
	flag.Float64Var(&toolConfig.Crop.Left, "crop_left", 0, "fraction cut from the left edge, 0-0.25")
	flag.Float64Var(&toolConfig.Crop.Right, "crop_right", 0, "fraction cut from the right edge, 0-0.25")
	flag.Float64Var(&toolConfig.Crop.Bottom, "crop_bottom", 0, "fraction cut from the bottom edge, 0-0.25")
	flag.Float64Var(&toolConfig.CropAll, "crop_all", 0, "fraction cut from every edge, overrides the single edges")
	flag.BoolVar(&toolConfig.Binarize, "binarize", false, "binarize the cropped image before OCR")
	flag.StringVar(&toolConfig.OutText, "out_txt", "", "write recognized text to this file")
	flag.StringVar(&toolConfig.OutJson, "out_json", "", "write {file_name, date, text} to this file")
	flag.StringVar(&toolConfig.OutPdf, "out_pdf", "", "write a searchable pdf to this file")
	flag.StringVar(&toolConfig.OutImage, "out_jpg", "", "write the processed image as 300 dpi jpeg")
	flag.StringVar(&engine, "engine", "tesseract", "ocr engine: tesseract, go_tesseract or mock")
	flag.BoolVar(&toolConfig.Debug, "debug", false, "sets debug flag, program will print more messages")
	apply := registerEngineFlags(&toolConfig.Engine)

	flag.Parse()

	engineType, ok := ParseOcrEngineType(engine)
	if !ok {
		return toolConfig, errors.Errorf("unknown engine %q", engine)
	}
	toolConfig.EngineType = engineType

	if err := apply(); err != nil {
		return toolConfig, err
	}
	return toolConfig, toolConfig.Validate()
}
