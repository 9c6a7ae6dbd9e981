package application

import (
	"context"
	"errors"
	"log/slog"

	"loanintake/internal/files"
	"loanintake/internal/geo"
	"loanintake/internal/identity"
	"loanintake/internal/pep"
	"loanintake/internal/platform/logger"
	"loanintake/internal/platform/metrics"
	"loanintake/internal/reference"
	"loanintake/pkg/domain"
	dErrors "loanintake/pkg/domain-errors"
	"loanintake/pkg/platform/sentinel"
)

// CatalogSource is the Reference Data Cache as seen by an application.
type CatalogSource interface {
	LoadAll(ctx context.Context) reference.Catalogs
	GewogsFor(ctx context.Context, dzongkhagCode string) []reference.Option
	PEPSubCategoriesFor(ctx context.Context, categoryCode string) []reference.Option
}

// Store keeps in-progress applications. Find returns sentinel.ErrNotFound
// for an unknown id.
type Store interface {
	Save(ctx context.Context, m *Manager) error
	Find(ctx context.Context, id domain.ApplicationID) (*Manager, error)
	Delete(ctx context.Context, id domain.ApplicationID) error
}

// Service creates and retrieves applications.
type Service struct {
	catalogs CatalogSource
	verifier identity.Verifier
	gate     *files.Gate
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(catalogs CatalogSource, verifier identity.Verifier, gate *files.Gate, store Store, opts ...Option) (*Service, error) {
	switch {
	case catalogs == nil:
		return nil, errors.New("catalog source is required")
	case verifier == nil:
		return nil, errors.New("identity verifier is required")
	case gate == nil:
		return nil, errors.New("file gate is required")
	case store == nil:
		return nil, errors.New("application store is required")
	}
	s := &Service{
		catalogs: catalogs,
		verifier: verifier,
		gate:     gate,
		store:    store,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create starts an application: catalogs are loaded, every list is
// initialized per policy and the primary party is seeded from initial.
// initial may be nil.
func (s *Service) Create(ctx context.Context, initial InitialStateProvider) (*Manager, error) {
	catalogs := s.catalogs.LoadAll(ctx)
	countries := catalogs.Options(reference.CatalogCountries)

	m := &Manager{
		app: &Application{
			ID:          domain.NewApplicationID(),
			Primary:     NewPartyRecord(),
			CoBorrowers: initialRecords(ListCoBorrowers),
			Guarantors:  initialRecords(ListGuarantors),
			Business:    Individual{},
		},
		catalogs: catalogs,
		geo:      geo.NewResolver(countries, s.catalogs, geo.WithLogger(s.logger), geo.WithMetrics(s.metrics)),
		pep:      pep.NewResolver(s.catalogs, pep.WithLogger(s.logger), pep.WithMetrics(s.metrics)),
		identity: identity.NewWorkflow(s.verifier, identity.WithLogger(s.logger), identity.WithMetrics(s.metrics)),
		gate:     s.gate,
		logger:   s.logger,
	}

	if initial != nil {
		seed, err := initial.InitialState(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "initial state unavailable, starting empty", "error", err)
		} else {
			m.seed(ctx, seed)
		}
	}

	if err := s.store.Save(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application")
	}
	s.logger.InfoContext(ctx, "application created", "application_id", m.ID().String())
	return m, nil
}

// Get returns an application by id.
func (s *Service) Get(ctx context.Context, id domain.ApplicationID) (*Manager, error) {
	m, err := s.store.Find(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return m, nil
}

// Discard drops an application.
func (s *Service) Discard(ctx context.Context, id domain.ApplicationID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to discard application")
	}
	return nil
}

// seed applies the resolved initial state to the primary party in schema
// order, with cascades.
func (m *Manager) seed(ctx context.Context, seed Seed) {
	values := seed.Resolve()
	m.mu.Lock()
	var effects []effect
	for _, f := range recordFields {
		v, ok := values[f.Path]
		if !ok {
			continue
		}
		delete(values, f.Path)
		e, err := m.apply(m.app.Primary, f, v)
		if err != nil {
			m.logger.WarnContext(ctx, "initial value rejected", "field", f.Path, "error", err)
			continue
		}
		effects = append(effects, e...)
	}
	m.mu.Unlock()
	for path := range values {
		m.logger.WarnContext(ctx, "initial value for unknown field ignored", "field", path)
	}
	m.run(ctx, effects)
}
