// Package metrics provides Prometheus metrics for movie loads and exports.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/movieloader/internal/core"
)

var (
	// LoadsTotal tracks finished loads by status
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movieloader",
			Subsystem: "ingest",
			Name:      "loads_total",
			Help:      "Total number of file loads by status",
		},
		[]string{"status"},
	)

	// LoadDuration tracks load duration in seconds
	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "movieloader",
			Subsystem: "ingest",
			Name:      "load_duration_seconds",
			Help:      "Duration of file loads in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		},
	)

	// RowsTotal tracks reconciled rows by outcome
	RowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movieloader",
			Subsystem: "ingest",
			Name:      "rows_total",
			Help:      "Total number of rows reconciled by outcome",
		},
		[]string{"outcome"},
	)

	// EntitiesCreated tracks entities created by kind
	EntitiesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movieloader",
			Subsystem: "ingest",
			Name:      "entities_created_total",
			Help:      "Total number of directors, movies, actors and links created",
		},
		[]string{"kind"},
	)

	// ExportRowsTotal tracks rows written by exports
	ExportRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "movieloader",
			Subsystem: "export",
			Name:      "rows_total",
			Help:      "Total number of rows returned by exports",
		},
	)

	// ExportsTotal tracks exports by status
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movieloader",
			Subsystem: "export",
			Name:      "requests_total",
			Help:      "Total number of exports by status",
		},
		[]string{"status"},
	)
)

// Recorder feeds the collectors above. It satisfies core.Observer and
// core.LoadRecorder.
type Recorder struct{}

var (
	_ core.Observer     = Recorder{}
	_ core.LoadRecorder = Recorder{}
)

func (Recorder) RowStarted(ctx context.Context, row core.Row) {}

func (Recorder) RowCompleted(ctx context.Context, row core.Row) {
	RowsTotal.WithLabelValues("committed").Inc()
}

func (Recorder) RowFailed(ctx context.Context, row core.Row, err error) {
	RowsTotal.WithLabelValues("failed").Inc()
}

func (Recorder) EntityCreated(ctx context.Context, kind core.EntityKind, id int64, name string) {
	EntitiesCreated.WithLabelValues(string(kind)).Inc()
}

func (Recorder) LoadFinished(result core.IngestResult, err error) {
	LoadsTotal.WithLabelValues(status(err)).Inc()
	LoadDuration.Observe(result.Duration.Seconds())
}

func (Recorder) ExportFinished(rows int, err error) {
	ExportsTotal.WithLabelValues(status(err)).Inc()
	ExportRowsTotal.Add(float64(rows))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
