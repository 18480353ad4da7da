package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xf0e/ocr-tool"
)

// Crop, optionally binarize and OCR one image or every image of a folder:
//   cli-ocrtool -image scan.png -crop_all 0.05 -binarize -psm 6 -out_txt scan.txt
//   cli-ocrtool -folder scans/ -binarize

func init() {
	zerolog.TimeFieldFormat = time.StampMilli
	// Default level is info, unless debug flag is present
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli})
}

func main() {

	var psmHelp bool
	flagFunc := func() {
		flag.BoolVar(
			&psmHelp,
			"psm_help",
			false,
			"print the page segmentation modes and exit",
		)
	}

	toolConfig, err := ocrtool.DefaultConfigFlagsToolOverride(flagFunc)
	if psmHelp {
		fmt.Print(ocrtool.PageSegModeHelp())
		return
	}
	if err != nil {
		log.Fatal().Err(err).Str("component", "OCR_CLI").Msg("invalid arguments")
	}
	if toolConfig.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	results, err := ocrtool.RunTool(ctx, toolConfig)
	for _, res := range results {
		if res.Err != nil {
			log.Error().Err(res.Err).Str("component", "OCR_CLI").Str("file_name", res.Path).Msg("document failed")
			continue
		}
		if toolConfig.ImagePath != "" && toolConfig.OutText == "" && toolConfig.OutJson == "" {
			fmt.Print(res.Text)
		}
	}
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_CLI").Msg("ocr run finished with errors")
		os.Exit(1)
	}

}
