package core

import (
	"context"
	"fmt"
	"strings"
)

// Reconciler turns canonical rows into deduplicated directors, movies,
// actors and movie/actor links.
type Reconciler struct {
	store    TxRunner
	observer Observer
}

// NewReconciler creates a Reconciler writing through store. Observers are
// notified in the order given.
func NewReconciler(store TxRunner, obs ...Observer) *Reconciler {
	return &Reconciler{store: store, observer: observers(obs)}
}

// Ingest reconciles rows in order, one transaction per row. The first row
// that fails is rolled back and stops the load; rows before it stay
// committed. The returned result counts only committed rows.
func (r *Reconciler) Ingest(ctx context.Context, rows []Row) (IngestResult, error) {
	var result IngestResult

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, &RowError{Line: row.Line, Err: err}
		}

		r.observer.RowStarted(ctx, row)

		var created []createdEntity
		err := r.store.WithinTx(ctx, func(tx Tx) error {
			created = created[:0]
			return reconcileRow(ctx, tx, row, func(kind EntityKind, id int64, name string) {
				created = append(created, createdEntity{kind: kind, id: id, name: name})
			})
		})
		if err != nil {
			r.observer.RowFailed(ctx, row, err)
			return result, &RowError{Line: row.Line, Err: err}
		}

		// Only report creations once the row has committed.
		for _, c := range created {
			result.count(c.kind)
			r.observer.EntityCreated(ctx, c.kind, c.id, c.name)
		}
		result.Rows++
		r.observer.RowCompleted(ctx, row)
	}

	return result, nil
}

type createdEntity struct {
	kind EntityKind
	id   int64
	name string
}

func reconcileRow(ctx context.Context, tx Tx, row Row, onCreate func(EntityKind, int64, string)) error {
	directorName, err := requiredName(row, FieldDirector)
	if err != nil {
		return err
	}
	title, err := requiredName(row, FieldTitle)
	if err != nil {
		return err
	}
	yearText, err := requiredField(row, FieldReleaseYear)
	if err != nil {
		return err
	}
	genre, err := requiredField(row, FieldGenre)
	if err != nil {
		return err
	}
	rating, _ := row.Get(FieldRating)

	year, err := ToPgYear(yearText)
	if err != nil {
		return err
	}

	director, created, err := tx.ResolveDirector(ctx, directorName)
	if err != nil {
		return fmt.Errorf("resolve director %q: %w", directorName, err)
	}
	if created {
		onCreate(KindDirector, director.ID, director.Name)
	}

	movie, created, err := tx.ResolveMovie(ctx, NewMovie{
		Title:       title,
		ReleaseYear: year,
		Genre:       ToPgText(genre),
		Rating:      ToPgRating(rating),
		DirectorID:  director.ID,
	})
	if err != nil {
		return fmt.Errorf("resolve movie %q: %w", title, err)
	}
	if created {
		onCreate(KindMovie, movie.ID, movie.Title)
	}

	actors, _ := row.Get(FieldActors)
	for _, name := range SplitActors(actors) {
		actor, created, err := tx.ResolveActor(ctx, name)
		if err != nil {
			return fmt.Errorf("resolve actor %q: %w", name, err)
		}
		if created {
			onCreate(KindActor, actor.ID, actor.Name)
		}

		linked, err := tx.LinkActor(ctx, movie.ID, actor.ID)
		if err != nil {
			return fmt.Errorf("link actor %q to movie %q: %w", name, title, err)
		}
		if linked {
			onCreate(KindMovieActor, movie.ID, actor.Name)
		}
	}

	return nil
}

// requiredField returns the raw value of a column the row must carry.
// Blank is allowed.
func requiredField(row Row, f Field) (string, error) {
	v, ok := row.Get(f)
	if !ok {
		return "", &MissingFieldError{Field: f}
	}
	return v, nil
}

// requiredName returns a natural-key value. Whitespace-only counts as missing.
func requiredName(row Row, f Field) (string, error) {
	v, err := requiredField(row, f)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", &MissingFieldError{Field: f}
	}
	return v, nil
}
