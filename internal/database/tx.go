package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/JonMunkholm/movieloader/internal/core"
)

// catalogTx implements core.Tx on one open transaction.
type catalogTx struct {
	tx     *sqlx.Tx
	flavor sqlbuilder.Flavor
}

var personColumns = []string{"name", "birth_year", "nationality"}

func (t *catalogTx) ResolveDirector(ctx context.Context, name string) (core.Director, bool, error) {
	var d core.Director
	id, created, err := t.resolvePerson(ctx, "directors", "director_id", name, &d)
	if err != nil {
		return core.Director{}, false, err
	}
	if created {
		d = core.Director{ID: id, Name: name}
	}
	return d, created, nil
}

func (t *catalogTx) ResolveActor(ctx context.Context, name string) (core.Actor, bool, error) {
	var a core.Actor
	id, created, err := t.resolvePerson(ctx, "actors", "actor_id", name, &a)
	if err != nil {
		return core.Actor{}, false, err
	}
	if created {
		a = core.Actor{ID: id, Name: name}
	}
	return a, created, nil
}

// resolvePerson inserts name into table unless it exists. When the row
// already existed it is loaded into dest.
func (t *catalogTx) resolvePerson(ctx context.Context, table, idColumn, name string, dest any) (int64, bool, error) {
	ib := t.flavor.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols("name")
	ib.Values(name)
	ib.SQL("ON CONFLICT (name) DO NOTHING RETURNING " + idColumn)

	id, created, err := t.insertReturning(ctx, ib)
	if err != nil || created {
		return id, created, err
	}

	sb := t.flavor.NewSelectBuilder()
	sb.Select(append([]string{idColumn}, personColumns...)...)
	sb.From(table)
	sb.Where(sb.Equal("name", name))

	query, args := sb.Build()
	if err := t.tx.GetContext(ctx, dest, query, args...); err != nil {
		return 0, false, err
	}
	return 0, false, nil
}

func (t *catalogTx) ResolveMovie(ctx context.Context, m core.NewMovie) (core.Movie, bool, error) {
	ib := t.flavor.NewInsertBuilder()
	ib.InsertInto("movies")
	ib.Cols("title", "release_year", "genre", "rating", "director_id")
	ib.Values(m.Title, m.ReleaseYear, m.Genre, m.Rating, m.DirectorID)
	ib.SQL("ON CONFLICT (title, director_id) DO NOTHING RETURNING movie_id")

	id, created, err := t.insertReturning(ctx, ib)
	if err != nil {
		return core.Movie{}, false, err
	}
	if created {
		return core.Movie{
			ID:          id,
			Title:       m.Title,
			ReleaseYear: m.ReleaseYear,
			Genre:       m.Genre,
			Rating:      m.Rating,
			DirectorID:  m.DirectorID,
		}, true, nil
	}

	sb := t.flavor.NewSelectBuilder()
	sb.Select("movie_id", "title", "release_year", "genre", "rating", "director_id")
	sb.From("movies")
	sb.Where(
		sb.Equal("title", m.Title),
		sb.Equal("director_id", m.DirectorID),
	)

	query, args := sb.Build()
	var movie core.Movie
	if err := t.tx.GetContext(ctx, &movie, query, args...); err != nil {
		return core.Movie{}, false, err
	}
	return movie, false, nil
}

func (t *catalogTx) LinkActor(ctx context.Context, movieID, actorID int64) (bool, error) {
	ib := t.flavor.NewInsertBuilder()
	ib.InsertInto("movie_actor")
	ib.Cols("movie_id", "actor_id")
	ib.Values(movieID, actorID)
	ib.SQL("ON CONFLICT (movie_id, actor_id) DO NOTHING")

	query, args := ib.Build()
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// insertReturning runs an INSERT ... ON CONFLICT DO NOTHING RETURNING id.
// No returned row means the conflict target already existed.
func (t *catalogTx) insertReturning(ctx context.Context, ib *sqlbuilder.InsertBuilder) (int64, bool, error) {
	query, args := ib.Build()

	var id int64
	err := t.tx.QueryRowxContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
