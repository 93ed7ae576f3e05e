package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Director is a person who directs movies. Name is the natural key.
type Director struct {
	ID          int64       `db:"director_id"`
	Name        string      `db:"name"`
	BirthYear   pgtype.Int4 `db:"birth_year"`
	Nationality pgtype.Text `db:"nationality"`
}

// Actor is a person appearing in movies. Name is the natural key.
type Actor struct {
	ID          int64       `db:"actor_id"`
	Name        string      `db:"name"`
	BirthYear   pgtype.Int4 `db:"birth_year"`
	Nationality pgtype.Text `db:"nationality"`
}

// Movie is owned by exactly one director. (Title, DirectorID) is the natural key.
type Movie struct {
	ID          int64         `db:"movie_id"`
	Title       string        `db:"title"`
	ReleaseYear pgtype.Int4   `db:"release_year"`
	Genre       pgtype.Text   `db:"genre"`
	Rating      pgtype.Float8 `db:"rating"`
	DirectorID  int64         `db:"director_id"`
}

// MovieActor associates a movie with one of its actors.
type MovieActor struct {
	MovieID int64 `db:"movie_id"`
	ActorID int64 `db:"actor_id"`
}

// NewMovie holds the attributes used when a movie has to be created.
// They are ignored when a movie with the same title and director exists.
type NewMovie struct {
	Title       string
	ReleaseYear pgtype.Int4
	Genre       pgtype.Text
	Rating      pgtype.Float8
	DirectorID  int64
}

// Tx is the set of resolve-or-create operations available inside one
// store transaction. Each Resolve call returns the canonical entity and
// whether this call created it.
type Tx interface {
	ResolveDirector(ctx context.Context, name string) (Director, bool, error)
	ResolveActor(ctx context.Context, name string) (Actor, bool, error)
	ResolveMovie(ctx context.Context, m NewMovie) (Movie, bool, error)
	LinkActor(ctx context.Context, movieID, actorID int64) (bool, error)
}

// TxRunner runs fn inside a single transaction. A non-nil error from fn
// rolls the transaction back; otherwise it is committed.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// ExportQuerier reads the flattened movie/director/actor join.
type ExportQuerier interface {
	ExportRows(ctx context.Context, filter ExportFilter) ([]ExportRow, error)
}

// Store is the persistence collaborator. Satisfied by *database.Store.
type Store interface {
	TxRunner
	ExportQuerier
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
}

// Field names one logical column of a movie row, independent of how the
// source file spells its header.
type Field string

const (
	FieldDirector    Field = "director"
	FieldTitle       Field = "title"
	FieldReleaseYear Field = "release_year"
	FieldGenre       Field = "genre"
	FieldRating      Field = "rating"
	FieldActors      Field = "actors"
)

// Row is one source record translated to canonical fields.
// A field missing from Values was absent from the source record;
// an empty string means the cell was blank.
type Row struct {
	Line   int
	Values map[Field]string
}

// Get returns the raw value of f and whether the source carried it.
func (r Row) Get(f Field) (string, bool) {
	v, ok := r.Values[f]
	return v, ok
}

// EntityKind identifies which table an entity belongs to.
type EntityKind string

const (
	KindDirector   EntityKind = "director"
	KindMovie      EntityKind = "movie"
	KindActor      EntityKind = "actor"
	KindMovieActor EntityKind = "movie_actor"
)

// IngestResult summarizes one load. On failure it still reports the rows
// committed before the failing one.
type IngestResult struct {
	LoadID           string        `json:"load_id"`
	FileName         string        `json:"file_name,omitempty"`
	Profile          string        `json:"profile,omitempty"`
	Rows             int           `json:"rows"`
	DirectorsCreated int           `json:"directors_created"`
	MoviesCreated    int           `json:"movies_created"`
	ActorsCreated    int           `json:"actors_created"`
	LinksCreated     int           `json:"links_created"`
	Duration         time.Duration `json:"-"`
}

func (r *IngestResult) count(kind EntityKind) {
	switch kind {
	case KindDirector:
		r.DirectorsCreated++
	case KindMovie:
		r.MoviesCreated++
	case KindActor:
		r.ActorsCreated++
	case KindMovieActor:
		r.LinksCreated++
	}
}

// ExportFilter holds optional substring filters. Empty fields impose no
// constraint; set fields are combined with AND.
type ExportFilter struct {
	Title    string
	Genre    string
	Director string
	Actor    string
}

// IsEmpty reports whether no filter is set.
func (f ExportFilter) IsEmpty() bool {
	return f.Title == "" && f.Genre == "" && f.Director == "" && f.Actor == ""
}

// ExportRow is one fan-out row: a (movie, director, actor) tuple.
type ExportRow struct {
	MovieID     int64         `db:"movie_id"`
	ActorID     int64         `db:"actor_id"`
	Title       string        `db:"title"`
	ReleaseYear pgtype.Int4   `db:"release_year"`
	Genre       pgtype.Text   `db:"genre"`
	Rating      pgtype.Float8 `db:"rating"`
	Director    string        `db:"director"`
	Actor       string        `db:"actor"`
}

// Stats holds row counts per table.
type Stats struct {
	Directors   int64 `json:"directors" db:"directors"`
	Movies      int64 `json:"movies" db:"movies"`
	Actors      int64 `json:"actors" db:"actors"`
	MovieActors int64 `json:"movie_actors" db:"movie_actors"`
}
