package core

import (
	"context"
	"log/slog"
)

// Observer receives reconciliation events at fixed points of the row loop.
// Implementations must be cheap and must not fail the load.
type Observer interface {
	RowStarted(ctx context.Context, row Row)
	EntityCreated(ctx context.Context, kind EntityKind, id int64, name string)
	RowFailed(ctx context.Context, row Row, err error)
	RowCompleted(ctx context.Context, row Row)
}

// LogObserver writes reconciliation events to a structured logger.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) RowStarted(ctx context.Context, row Row) {
	o.Logger.DebugContext(ctx, "row started", "line", row.Line)
}

func (o LogObserver) EntityCreated(ctx context.Context, kind EntityKind, id int64, name string) {
	o.Logger.DebugContext(ctx, "entity created", "kind", string(kind), "id", id, "name", name)
}

func (o LogObserver) RowFailed(ctx context.Context, row Row, err error) {
	o.Logger.ErrorContext(ctx, "row failed", "line", row.Line, "error", err)
}

func (o LogObserver) RowCompleted(ctx context.Context, row Row) {}

// observers fans events out to several observers.
type observers []Observer

func (os observers) RowStarted(ctx context.Context, row Row) {
	for _, o := range os {
		o.RowStarted(ctx, row)
	}
}

func (os observers) EntityCreated(ctx context.Context, kind EntityKind, id int64, name string) {
	for _, o := range os {
		o.EntityCreated(ctx, kind, id, name)
	}
}

func (os observers) RowFailed(ctx context.Context, row Row, err error) {
	for _, o := range os {
		o.RowFailed(ctx, row, err)
	}
}

func (os observers) RowCompleted(ctx context.Context, row Row) {
	for _, o := range os {
		o.RowCompleted(ctx, row)
	}
}
