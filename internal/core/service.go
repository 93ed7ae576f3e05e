package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/movieloader/internal/config"
	"github.com/JonMunkholm/movieloader/internal/logging"
	"github.com/JonMunkholm/movieloader/internal/tabular"
)

// DefaultLoadTimeout bounds a single load when the config leaves it unset.
const DefaultLoadTimeout = 5 * time.Minute

// LoadRecorder is told about every finished load and export. The metrics
// package implements it.
type LoadRecorder interface {
	LoadFinished(result IngestResult, err error)
	ExportFinished(rows int, err error)
}

// Service is the entry point shared by the HTTP server and the CLI.
type Service struct {
	store          Store
	projector      *Projector
	limiter        *LoadLimiter
	defaultProfile string
	timeout        time.Duration

	observers []Observer
	recorder  LoadRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithObservers adds reconciliation observers to every load.
func WithObservers(obs ...Observer) Option {
	return func(s *Service) {
		s.observers = append(s.observers, obs...)
	}
}

// WithRecorder sets the load and export recorder.
func WithRecorder(r LoadRecorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a Service over store using the ingest settings in cfg.
func NewService(store Store, cfg config.IngestConfig, opts ...Option) *Service {
	s := &Service{
		store:          store,
		projector:      NewProjector(store),
		limiter:        NewLoadLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		defaultProfile: cfg.Profile,
		timeout:        cfg.Timeout,
		recorder:       nopRecorder{},
	}
	if s.defaultProfile == "" {
		s.defaultProfile = ProfileAuto
	}
	if s.timeout <= 0 {
		s.timeout = DefaultLoadTimeout
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load ingests one CSV or XLSX file. An unsupported suffix or unknown
// profile is rejected before the file is read. On a row failure the
// returned result still describes the rows committed before it.
func (s *Service) Load(ctx context.Context, fileName string, r io.Reader, profile string) (*IngestResult, error) {
	format, err := tabular.DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	if profile == "" {
		profile = s.defaultProfile
	}
	if profile != ProfileAuto {
		if _, ok := Get(profile); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, profile)
		}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result := IngestResult{
		LoadID:   uuid.New().String(),
		FileName: fileName,
	}
	logger := logging.WithFields(ctx, "load_id", result.LoadID, "file", fileName)

	finish := func(err error) (*IngestResult, error) {
		result.Duration = time.Since(start)
		s.recorder.LoadFinished(result, err)
		if err != nil {
			logger.Warn("load failed", "rows", result.Rows, "error", err, "duration", result.Duration)
			return &result, err
		}
		logger.Info("load finished",
			"rows", result.Rows,
			"directors_created", result.DirectorsCreated,
			"movies_created", result.MoviesCreated,
			"actors_created", result.ActorsCreated,
			"links_created", result.LinksCreated,
			"duration", result.Duration,
		)
		return &result, nil
	}

	tbl, err := tabular.Parse(format, r)
	if err != nil {
		return finish(fmt.Errorf("parse %s: %w", fileName, err))
	}

	p, err := Resolve(profile, tbl.Header)
	if err != nil {
		return finish(err)
	}
	result.Profile = p.Key
	logger = logger.With("profile", p.Key)
	logger.Info("load started", "records", len(tbl.Records))

	rows := make([]Row, len(tbl.Records))
	for i, rec := range tbl.Records {
		rows[i] = p.Adapt(rec.Line, rec.Fields)
	}

	obs := append([]Observer{LogObserver{Logger: logger}}, s.observers...)
	counts, err := NewReconciler(s.store, obs...).Ingest(ctx, rows)
	result.Rows = counts.Rows
	result.DirectorsCreated = counts.DirectorsCreated
	result.MoviesCreated = counts.MoviesCreated
	result.ActorsCreated = counts.ActorsCreated
	result.LinksCreated = counts.LinksCreated

	return finish(err)
}

// Export returns the fan-out rows matching filter.
func (s *Service) Export(ctx context.Context, filter ExportFilter) ([]ExportRow, error) {
	rows, err := s.projector.Export(ctx, filter)
	s.recorder.ExportFinished(len(rows), err)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("export finished", "rows", len(rows), "filtered", !filter.IsEmpty())
	return rows, nil
}

// Stats returns entity counts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ActiveLoads returns the number of loads currently running.
func (s *Service) ActiveLoads() int {
	return s.limiter.ActiveCount()
}

// WaitForLoads blocks until running loads finish or ctx is done.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

type nopRecorder struct{}

func (nopRecorder) LoadFinished(IngestResult, error) {}
func (nopRecorder) ExportFinished(int, error)        {}
