package database

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/movieloader/internal/core"
)

// ExportRows returns one row per (movie, actor) link matching filter,
// ordered by movie then actor. Movies without actors are not returned.
func (s *Store) ExportRows(ctx context.Context, filter core.ExportFilter) ([]core.ExportRow, error) {
	sb := s.flavor.NewSelectBuilder()
	sb.Select(
		"m.movie_id",
		"a.actor_id",
		"m.title",
		"m.release_year",
		"m.genre",
		"m.rating",
		sb.As("d.name", "director"),
		sb.As("a.name", "actor"),
	)
	sb.From(sb.As("movies", "m"))
	sb.Join(sb.As("directors", "d"), "d.director_id = m.director_id")
	sb.Join(sb.As("movie_actor", "ma"), "ma.movie_id = m.movie_id")
	sb.Join(sb.As("actors", "a"), "a.actor_id = ma.actor_id")

	var where []string
	for _, f := range []struct{ column, value string }{
		{"m.title", filter.Title},
		{"m.genre", filter.Genre},
		{"d.name", filter.Director},
		{"a.name", filter.Actor},
	} {
		if f.value == "" {
			continue
		}
		where = append(where, fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, f.column, sb.Var(core.LikePattern(f.value))))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("m.movie_id", "a.actor_id")

	query, args := sb.Build()
	rows := []core.ExportRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

const statsQuery = `SELECT
	(SELECT COUNT(*) FROM directors) AS directors,
	(SELECT COUNT(*) FROM movies) AS movies,
	(SELECT COUNT(*) FROM actors) AS actors,
	(SELECT COUNT(*) FROM movie_actor) AS movie_actors`

// Stats returns the row count of each catalog table.
func (s *Store) Stats(ctx context.Context) (core.Stats, error) {
	var st core.Stats
	if err := s.db.GetContext(ctx, &st, statsQuery); err != nil {
		return core.Stats{}, err
	}
	return st, nil
}
