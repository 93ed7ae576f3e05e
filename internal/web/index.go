package web

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/movieloader/internal/core"
	"github.com/JonMunkholm/movieloader/internal/logging"
)

// handleIndex renders the upload and export forms with current counts.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Counts are informational; the page still renders without them.
	stats, err := s.service.Stats(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("index stats unavailable", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage(stats, err == nil, core.All()).Render(ctx, w); err != nil {
		s.logWriteError(r, err)
	}
}

// indexPage is the single HTML page of the service.
func indexPage(stats core.Stats, haveStats bool, profiles []core.Profile) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}

		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Movie Loader</title></head><body>`)
		p.raw(`<h1>Movie Loader</h1>`)

		if haveStats {
			p.raw(`<p id="stats">`)
			p.text(fmt.Sprintf("%d directors, %d movies, %d actors, %d links",
				stats.Directors, stats.Movies, stats.Actors, stats.MovieActors))
			p.raw(`</p>`)
		}

		p.raw(`<h2>Load data</h2>`)
		p.raw(`<form action="/load-data" method="post" enctype="multipart/form-data">`)
		p.raw(`<input type="file" name="file" accept=".csv,.xlsx" required> `)
		p.raw(`<select name="profile"><option value="">auto</option>`)
		for _, prof := range profiles {
			p.raw(`<option value="`)
			p.text(prof.Key)
			p.raw(`">`)
			p.text(prof.Key + " (" + prof.Label + ")")
			p.raw(`</option>`)
		}
		p.raw(`</select> <button type="submit">Load</button></form>`)

		p.raw(`<h2>Export data</h2>`)
		p.raw(`<form action="/export-data" method="get">`)
		for _, f := range []string{"title", "genre", "director", "actor"} {
			p.raw(`<label>`)
			p.text(f)
			p.raw(` <input type="text" name="`)
			p.text(f)
			p.raw(`"></label> `)
		}
		p.raw(`<button type="submit">Download CSV</button></form>`)

		p.raw(`</body></html>`)
		return p.err
	})
}

// htmlWriter writes markup, escaping text, and keeps the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (p *htmlWriter) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *htmlWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (s *Server) logWriteError(r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("write response", "path", r.URL.Path, "error", err)
}
