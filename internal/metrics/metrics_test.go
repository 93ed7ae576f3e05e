package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/movieloader/internal/core"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()

	beforeMovies := testutil.ToFloat64(EntitiesCreated.WithLabelValues("movie"))
	beforeFailed := testutil.ToFloat64(RowsTotal.WithLabelValues("failed"))
	beforeLoads := testutil.ToFloat64(LoadsTotal.WithLabelValues("error"))
	beforeExport := testutil.ToFloat64(ExportRowsTotal)

	r.EntityCreated(ctx, core.KindMovie, 1, "Inception")
	r.RowFailed(ctx, core.Row{Line: 2}, errors.New("boom"))
	r.LoadFinished(core.IngestResult{Duration: time.Second}, errors.New("boom"))
	r.ExportFinished(3, nil)

	assert.Equal(t, beforeMovies+1, testutil.ToFloat64(EntitiesCreated.WithLabelValues("movie")))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(RowsTotal.WithLabelValues("failed")))
	assert.Equal(t, beforeLoads+1, testutil.ToFloat64(LoadsTotal.WithLabelValues("error")))
	assert.Equal(t, beforeExport+3, testutil.ToFloat64(ExportRowsTotal))
}

func TestHandler(t *testing.T) {
	Recorder{}.LoadFinished(core.IngestResult{}, nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "movieloader_ingest_loads_total")
}
