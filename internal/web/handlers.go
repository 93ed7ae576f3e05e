package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/movieloader/internal/core"
	"github.com/JonMunkholm/movieloader/internal/tabular"
)

// loadResponse is the success body of a load.
type loadResponse struct {
	Message string `json:"message"`
	*core.IngestResult
}

var errNoFile = errors.New("no file provided")

// handleLoad ingests the multipart file field "file". The optional form
// field "profile" overrides the configured column profile.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Ingest.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, errors.New("file too large"), http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := s.service.Load(r.Context(), header.Filename, file, r.FormValue("profile"))
	if err != nil {
		respondLoadError(w, r, err, loadErrorStatus(err), result)
		return
	}

	writeJSON(w, http.StatusOK, loadResponse{
		Message:      "Data loaded successfully",
		IngestResult: result,
	})
}

// loadErrorStatus maps a load failure to an HTTP status. Problems with the
// request or file are client errors; a failing row is a server error.
func loadErrorStatus(err error) int {
	var parseErr *tabular.ParseError
	switch {
	case errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrUnknownProfile),
		errors.Is(err, tabular.ErrEmptyFile),
		errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyLoads):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleExport streams the filtered fan-out rows as a CSV attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.ExportFilter{
		Title:    q.Get("title"),
		Genre:    q.Get("genre"),
		Director: q.Get("director"),
		Actor:    q.Get("actor"),
	}

	rows, err := s.service.Export(r.Context(), filter)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=movies.csv")

	if err := core.WriteCSV(w, rows); err != nil {
		// Headers are already sent; all we can do is log.
		s.logWriteError(r, err)
	}
}

// handleStats returns entity counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
