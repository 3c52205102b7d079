package monitoring

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ayurpredict/ml"
)

var (
	// Prediction metrics
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayur_predictions_total",
			Help: "Total number of predictions by final label",
		},
		[]string{"label", "source"}, // source: api|batch|ws|cli
	)

	LowConfidenceOverrides = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayur_low_confidence_overrides_total",
			Help: "Predictions forced to no_match, by the label the classifier preferred",
		},
		[]string{"raw_label"},
	)

	PredictionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayur_prediction_errors_total",
			Help: "Failed predictions by reason",
		},
		[]string{"reason"}, // reason: invalid_input|model_not_loaded|internal
	)

	PredictionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ayur_prediction_latency_seconds",
			Help:    "Prediction latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		},
		[]string{"source"},
	)

	// Model metrics
	ModelReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayur_model_reloads_total",
			Help: "Model reload attempts",
		},
		[]string{"status"}, // status: success|error
	)

	ModelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ayur_model_loaded",
			Help: "1 when a model is serving predictions",
		},
	)

	// Transport metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayur_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ayur_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WebSocketSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ayur_websocket_sessions",
			Help: "Open prediction websocket sessions",
		},
	)
)

var initOnce sync.Once

// Init registers all metrics with the default registry. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(Predictions)
		prometheus.MustRegister(LowConfidenceOverrides)
		prometheus.MustRegister(PredictionErrors)
		prometheus.MustRegister(PredictionLatency)

		prometheus.MustRegister(ModelReloads)
		prometheus.MustRegister(ModelLoaded)

		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)
		prometheus.MustRegister(WebSocketSessions)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPrediction records the outcome of one prediction.
func RecordPrediction(source string, raw, final ml.Label, latency time.Duration, err error) {
	PredictionLatency.WithLabelValues(source).Observe(latency.Seconds())
	if err != nil {
		PredictionErrors.WithLabelValues(ErrorReason(err)).Inc()
		return
	}
	Predictions.WithLabelValues(string(final), source).Inc()
	if raw != final && final == ml.NoMatch {
		LowConfidenceOverrides.WithLabelValues(string(raw)).Inc()
	}
}

// RecordReload records a model reload attempt.
func RecordReload(err error) {
	if err != nil {
		ModelReloads.WithLabelValues("error").Inc()
		return
	}
	ModelReloads.WithLabelValues("success").Inc()
	ModelLoaded.Set(1)
}

func SetModelLoaded(loaded bool) {
	if loaded {
		ModelLoaded.Set(1)
	} else {
		ModelLoaded.Set(0)
	}
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ErrorReason maps a prediction error to a metric label.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, ml.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ml.ErrModelNotLoaded), errors.Is(err, ml.ErrArtifactMissing):
		return "model_not_loaded"
	default:
		return "internal"
	}
}
