package metrics

import (
	"net/http"
	"strconv"

	"filemover/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MovesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filemover_moves_total",
			Help: "Move outcomes by kind and detection path",
		},
		[]string{"outcome", "origin"},
	)

	MoveAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filemover_move_attempts",
			Help:    "Attempts needed to resolve a file",
			Buckets: []float64{1, 2, 3, 5},
		},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filemover_sweep_duration_seconds",
			Help:    "Time to run one sweep of the source directory",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	SweepErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filemover_sweep_errors_total",
			Help: "Sweeps that could not list the source directory",
		},
	)

	WatcherState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filemover_watcher_state",
			Help: "1 for the watcher's current state, 0 otherwise",
		},
		[]string{"state"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filemover_http_requests_total",
			Help: "Total control API requests",
		},
		[]string{"method", "path", "status"},
	)
)

var watcherStates = []model.WatcherState{
	model.WatcherStopped,
	model.WatcherActive,
	model.WatcherFaulted,
	model.WatcherReinitializing,
	model.WatcherFailed,
}

func init() {
	prometheus.MustRegister(
		MovesTotal,
		MoveAttempts,
		SweepDuration,
		SweepErrorsTotal,
		WatcherState,
		HTTPRequestsTotal,
	)
}

func ObserveOutcome(o model.MoveOutcome) {
	MovesTotal.WithLabelValues(string(o.Kind), string(o.File.Origin)).Inc()
	if o.Attempts > 0 {
		MoveAttempts.Observe(float64(o.Attempts))
	}
}

func SetWatcherState(current model.WatcherState) {
	for _, s := range watcherStates {
		v := 0.0
		if s == current {
			v = 1
		}
		WatcherState.WithLabelValues(string(s)).Set(v)
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// EchoMiddleware returns Echo middleware that counts control API requests.
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			HTTPRequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Inc()

			return err
		}
	}
}
