package ocrtool

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	inFlightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ocrtool_in_flight_requests",
		Help: "Number of currently processed requests.",
	})
	counter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrtool_api_requests_total",
			Help: "A counter for requests to the wrapped handler.",
		},
		[]string{"code", "method"},
	)

	// duration is partitioned by the HTTP method and handler. It uses custom
	// buckets based on the expected request duration.
	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocrtool_request_duration_seconds",
			Help:    "A histogram of latencies for requests.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"handler", "method"},
	)

	requestSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocrtool_request_size_bytes",
			Help:    "A histogram of request sizes.",
			Buckets: []float64{100, 1500, 5000000, 10000000, 25000000, 50000000},
		},
		[]string{},
	)

	preprocessDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocrtool_preprocess_duration_seconds",
			Help:    "Time spent in each preprocessor.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"preprocessor"},
	)

	engineRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrtool_engine_requests_total",
			Help: "OCR engine invocations by engine and outcome.",
		},
		[]string{"engine", "status"},
	)

	registerOnce sync.Once
)

// RegisterMetrics adds all collectors to the default registry. It is safe to
// call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(inFlightGauge, counter, duration, requestSize, preprocessDuration, engineRequests)
	})
}

// InstrumentHandler wraps an ocr handler to provide prometheus metrics
func InstrumentHandler(name string, handler http.Handler) http.Handler {
	RegisterMetrics()

	return promhttp.InstrumentHandlerInFlight(inFlightGauge,
		promhttp.InstrumentHandlerDuration(duration.MustCurryWith(prometheus.Labels{"handler": name}),
			promhttp.InstrumentHandlerCounter(counter,
				promhttp.InstrumentHandlerRequestSize(requestSize, handler),
			),
		),
	)
}

func observeEngine(engineType OcrEngineType, err error) {
	status := "done"
	if err != nil {
		status = "error"
	}
	engineRequests.WithLabelValues(engineType.String(), status).Inc()
}
