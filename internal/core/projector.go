package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ExportHeader is the column layout of every export.
var ExportHeader = []string{"Title", "ReleaseYear", "Genre", "Rating", "Director", "Actor"}

// Projector flattens the stored catalog into one row per (movie, actor) pair.
type Projector struct {
	store ExportQuerier
}

// NewProjector creates a Projector reading from store.
func NewProjector(store ExportQuerier) *Projector {
	return &Projector{store: store}
}

// Export returns the fan-out rows matching filter. An empty result is not an error.
func (p *Projector) Export(ctx context.Context, filter ExportFilter) ([]ExportRow, error) {
	rows, err := p.store.ExportRows(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}
	return rows, nil
}

// WriteCSV serializes rows with ExportHeader. The header is written even
// when rows is empty.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(ExportHeader))
	for _, r := range rows {
		record[0] = r.Title
		record[1] = FormatYear(r.ReleaseYear)
		record[2] = FormatText(r.Genre)
		record[3] = FormatRating(r.Rating)
		record[4] = r.Director
		record[5] = r.Actor
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// LikePattern builds a substring LIKE pattern for v, escaping the LIKE
// metacharacters with a backslash so v matches literally. Callers must
// pair it with ESCAPE '\'.
func LikePattern(v string) string {
	var b strings.Builder
	b.Grow(len(v) + 2)
	b.WriteByte('%')
	for _, r := range v {
		switch r {
		case '%', '_', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}
