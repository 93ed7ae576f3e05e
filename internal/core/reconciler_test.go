package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory TxRunner. Each transaction works on a copy of
// the state which replaces the committed state only when fn succeeds.
type memStore struct {
	state   memState
	failOn  string // actor name whose resolution fails
	txCount int
}

type memState struct {
	directors map[string]int64
	actors    map[string]int64
	movies    map[movieKey]Movie
	links     map[MovieActor]bool
	nextID    int64
}

type movieKey struct {
	title      string
	directorID int64
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		directors: map[string]int64{},
		actors:    map[string]int64{},
		movies:    map[movieKey]Movie{},
		links:     map[MovieActor]bool{},
	}}
}

func (s memState) clone() memState {
	c := memState{
		directors: make(map[string]int64, len(s.directors)),
		actors:    make(map[string]int64, len(s.actors)),
		movies:    make(map[movieKey]Movie, len(s.movies)),
		links:     make(map[MovieActor]bool, len(s.links)),
		nextID:    s.nextID,
	}
	for k, v := range s.directors {
		c.directors[k] = v
	}
	for k, v := range s.actors {
		c.actors[k] = v
	}
	for k, v := range s.movies {
		c.movies[k] = v
	}
	for k, v := range s.links {
		c.links[k] = v
	}
	return c
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	m.txCount++
	tx := &memTx{state: m.state.clone(), failOn: m.failOn}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

type memTx struct {
	state  memState
	failOn string
}

func (t *memTx) ResolveDirector(ctx context.Context, name string) (Director, bool, error) {
	if id, ok := t.state.directors[name]; ok {
		return Director{ID: id, Name: name}, false, nil
	}
	t.state.nextID++
	t.state.directors[name] = t.state.nextID
	return Director{ID: t.state.nextID, Name: name}, true, nil
}

func (t *memTx) ResolveActor(ctx context.Context, name string) (Actor, bool, error) {
	if name == t.failOn {
		return Actor{}, false, errors.New("constraint failed")
	}
	if id, ok := t.state.actors[name]; ok {
		return Actor{ID: id, Name: name}, false, nil
	}
	t.state.nextID++
	t.state.actors[name] = t.state.nextID
	return Actor{ID: t.state.nextID, Name: name}, true, nil
}

func (t *memTx) ResolveMovie(ctx context.Context, m NewMovie) (Movie, bool, error) {
	key := movieKey{m.Title, m.DirectorID}
	if mv, ok := t.state.movies[key]; ok {
		return mv, false, nil
	}
	t.state.nextID++
	mv := Movie{
		ID:          t.state.nextID,
		Title:       m.Title,
		ReleaseYear: m.ReleaseYear,
		Genre:       m.Genre,
		Rating:      m.Rating,
		DirectorID:  m.DirectorID,
	}
	t.state.movies[key] = mv
	return mv, true, nil
}

func (t *memTx) LinkActor(ctx context.Context, movieID, actorID int64) (bool, error) {
	k := MovieActor{MovieID: movieID, ActorID: actorID}
	if t.state.links[k] {
		return false, nil
	}
	t.state.links[k] = true
	return true, nil
}

func movieRow(line int, title, year, genre, rating, director, actors string) Row {
	return Row{Line: line, Values: map[Field]string{
		FieldTitle:       title,
		FieldReleaseYear: year,
		FieldGenre:       genre,
		FieldRating:      rating,
		FieldDirector:    director,
		FieldActors:      actors,
	}}
}

// countingObserver records events for assertions.
type countingObserver struct {
	started, completed, failed int
	created                    map[EntityKind]int
}

func (o *countingObserver) RowStarted(ctx context.Context, row Row) { o.started++ }
func (o *countingObserver) RowCompleted(ctx context.Context, row Row) {
	o.completed++
}
func (o *countingObserver) RowFailed(ctx context.Context, row Row, err error) { o.failed++ }
func (o *countingObserver) EntityCreated(ctx context.Context, kind EntityKind, id int64, name string) {
	if o.created == nil {
		o.created = map[EntityKind]int{}
	}
	o.created[kind]++
}

func TestIngest_Inception(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	res, err := r.Ingest(context.Background(), []Row{
		movieRow(2, "Inception", "2010", "Action", "8.8", "Christopher Nolan", "Leonardo DiCaprio, Joseph Gordon-Levitt"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 1, res.DirectorsCreated)
	assert.Equal(t, 1, res.MoviesCreated)
	assert.Equal(t, 2, res.ActorsCreated)
	assert.Equal(t, 2, res.LinksCreated)

	assert.Len(t, store.state.directors, 1)
	assert.Len(t, store.state.movies, 1)
	assert.Len(t, store.state.actors, 2)
	assert.Len(t, store.state.links, 2)

	mv := store.state.movies[movieKey{"Inception", store.state.directors["Christopher Nolan"]}]
	assert.Equal(t, int32(2010), mv.ReleaseYear.Int32)
	assert.Equal(t, "Action", mv.Genre.String)
	assert.Equal(t, 8.8, mv.Rating.Float64)
}

func TestIngest_DeduplicatesAcrossRows(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	rows := []Row{
		movieRow(2, "Inception", "2010", "Action", "8.8", "Christopher Nolan", "Leonardo DiCaprio, Tom Hardy"),
		movieRow(3, "Dunkirk", "2017", "War", "7.8", "Christopher Nolan", "Tom Hardy"),
		movieRow(4, "The Revenant", "2015", "Drama", "8.0", "Alejandro G. Iñárritu", "Leonardo DiCaprio, Tom Hardy"),
	}
	res, err := r.Ingest(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.DirectorsCreated)
	assert.Equal(t, 3, res.MoviesCreated)
	assert.Equal(t, 2, res.ActorsCreated)
	assert.Equal(t, 5, res.LinksCreated)
	assert.Len(t, store.state.actors, 2)
	assert.Len(t, store.state.links, 5)
}

func TestIngest_ReingestIsIdempotent(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)
	rows := []Row{
		movieRow(2, "Inception", "2010", "Action", "8.8", "Christopher Nolan", "Leonardo DiCaprio, Joseph Gordon-Levitt"),
	}

	_, err := r.Ingest(context.Background(), rows)
	require.NoError(t, err)

	res, err := r.Ingest(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Rows)
	assert.Zero(t, res.DirectorsCreated+res.MoviesCreated+res.ActorsCreated+res.LinksCreated)
	assert.Len(t, store.state.movies, 1)
	assert.Len(t, store.state.links, 2)
}

func TestIngest_FirstWriteWins(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	_, err := r.Ingest(context.Background(), []Row{
		movieRow(2, "Inception", "2010", "Action", "8.8", "Christopher Nolan", ""),
		movieRow(3, "Inception", "2011", "Drama", "1.0", "Christopher Nolan", ""),
	})
	require.NoError(t, err)

	require.Len(t, store.state.movies, 1)
	for _, mv := range store.state.movies {
		assert.Equal(t, int32(2010), mv.ReleaseYear.Int32)
		assert.Equal(t, "Action", mv.Genre.String)
	}
}

func TestIngest_SameTitleDifferentDirector(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	res, err := r.Ingest(context.Background(), []Row{
		movieRow(2, "Solaris", "1972", "Sci-Fi", "8.1", "Andrei Tarkovsky", ""),
		movieRow(3, "Solaris", "2002", "Sci-Fi", "6.2", "Steven Soderbergh", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.MoviesCreated)
}

func TestIngest_RatingCoercion(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	row := movieRow(2, "Tenet", "2020", "Action", "N/A", "Christopher Nolan", "")
	delete(row.Values, FieldRating)
	_, err := r.Ingest(context.Background(), []Row{
		movieRow(2, "Memento", "2000", "Thriller", "N/A", "Christopher Nolan", ""),
		row,
	})
	require.NoError(t, err)

	for _, mv := range store.state.movies {
		assert.False(t, mv.Rating.Valid, "rating of %s should be null", mv.Title)
	}
}

func TestIngest_NoActors(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	absent := movieRow(3, "Following", "1998", "Crime", "7.5", "Christopher Nolan", "")
	delete(absent.Values, FieldActors)

	res, err := r.Ingest(context.Background(), []Row{
		movieRow(2, "Insomnia", "2002", "Thriller", "7.2", "Christopher Nolan", ""),
		absent,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.MoviesCreated)
	assert.Zero(t, res.ActorsCreated)
	assert.Empty(t, store.state.links)
}

func TestIngest_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(Row)
		field Field
	}{
		{name: "director column absent", edit: func(r Row) { delete(r.Values, FieldDirector) }, field: FieldDirector},
		{name: "director blank", edit: func(r Row) { r.Values[FieldDirector] = "  " }, field: FieldDirector},
		{name: "title blank", edit: func(r Row) { r.Values[FieldTitle] = "" }, field: FieldTitle},
		{name: "genre column absent", edit: func(r Row) { delete(r.Values, FieldGenre) }, field: FieldGenre},
		{name: "release year column absent", edit: func(r Row) { delete(r.Values, FieldReleaseYear) }, field: FieldReleaseYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			row := movieRow(5, "Inception", "2010", "Action", "8.8", "Christopher Nolan", "Tom Hardy")
			tt.edit(row)

			_, err := NewReconciler(store).Ingest(context.Background(), []Row{row})
			require.Error(t, err)

			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, 5, rowErr.Line)

			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.field, missing.Field)

			assert.Empty(t, store.state.directors)
		})
	}
}

func TestIngest_FailureKeepsEarlierRows(t *testing.T) {
	store := newMemStore()
	store.failOn = "Broken Actor"
	obs := &countingObserver{}
	r := NewReconciler(store, obs)

	rows := []Row{
		movieRow(2, "Inception", "2010", "Action", "8.8", "Christopher Nolan", "Leonardo DiCaprio"),
		movieRow(3, "Heat", "1995", "Crime", "8.3", "Michael Mann", "Al Pacino, Broken Actor"),
		movieRow(4, "Dunkirk", "2017", "War", "7.8", "Christopher Nolan", "Tom Hardy"),
	}
	res, err := r.Ingest(context.Background(), rows)
	require.Error(t, err)

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Line)
	assert.Contains(t, err.Error(), "Broken Actor")

	// Row 2 committed; row 3 rolled back entirely; row 4 never ran.
	assert.Equal(t, 1, res.Rows)
	assert.Len(t, store.state.directors, 1)
	assert.Len(t, store.state.movies, 1)
	assert.Len(t, store.state.actors, 1)
	assert.Equal(t, 2, store.txCount)

	assert.Equal(t, 2, obs.started)
	assert.Equal(t, 1, obs.completed)
	assert.Equal(t, 1, obs.failed)
	assert.Equal(t, 1, obs.created[KindDirector])
	assert.Equal(t, 1, obs.created[KindActor])
}

func TestIngest_InvalidReleaseYear(t *testing.T) {
	store := newMemStore()

	_, err := NewReconciler(store).Ingest(context.Background(), []Row{
		movieRow(7, "Inception", "twenty ten", "Action", "8.8", "Christopher Nolan", ""),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 7")
	assert.Contains(t, err.Error(), "invalid release year")
	assert.Empty(t, store.state.movies)
}

func TestIngest_CancelledContext(t *testing.T) {
	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReconciler(store).Ingest(ctx, []Row{
		movieRow(2, "Inception", "2010", "Action", "8.8", "Christopher Nolan", ""),
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.txCount)
}
