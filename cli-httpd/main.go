package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xf0e/ocr-tool"
)

// To test it:
// curl -X POST -H "Content-Type: application/json" -d '{"img_url":"http://localhost:8080/img","engine":"tesseract","binarize":true}' http://localhost:8080/ocr

func init() {
	zerolog.TimeFieldFormat = time.StampMilli
	// Default level is info, unless debug flag is present
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {

	var httpPort uint
	var debug bool
	flagFunc := func() {
		flag.UintVar(
			&httpPort,
			"http_port",
			8080,
			"The http port to listen on, eg, 8081",
		)
		flag.BoolVar(
			&debug,
			"debug",
			false,
			"sets debug flag, program will print more messages",
		)
	}

	engineConfig, err := ocrtool.DefaultConfigFlagsEngineOverride(flagFunc)
	if err != nil {
		log.Fatal().Err(err).Str("component", "CLI_HTTP").Msg("invalid engine configuration")
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	mux := http.NewServeMux()
	// any requests to root, just show the landing page
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, ocrtool.GenerateLandingPage())
	})
	mux.Handle("/ocr", ocrtool.InstrumentHandler("ocr", ocrtool.NewOcrHttpHandler(engineConfig)))
	mux.Handle("/ocr-file-upload", ocrtool.InstrumentHandler("ocr-file-upload", ocrtool.NewOcrHttpMultipartHandler(engineConfig)))
	mux.Handle("/status", ocrtool.NewOcrHttpStatusHandler(engineConfig))
	// expose metrics for prometheus
	mux.Handle("/metrics", promhttp.Handler())

	listenAddr := fmt.Sprintf(":%d", httpPort)
	server := &http.Server{Addr: listenAddr, Handler: mux}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signals
		log.Info().Str("component", "CLI_HTTP").Str("signal", sig.String()).
			Msg("Caught signal to terminate, finishing running requests")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Str("component", "CLI_HTTP").Msg("shutdown failed")
		}
	}()

	log.Info().Str("component", "CLI_HTTP").Str("listenAddr", listenAddr).Msg("Starting listener...")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Str("component", "CLI_HTTP").Caller().Msg("cli_http has failed to start")
	}

}
