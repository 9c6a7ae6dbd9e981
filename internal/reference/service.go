package reference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"loanintake/internal/platform/logger"
	"loanintake/internal/platform/metrics"
	"loanintake/internal/upstream"
	"loanintake/pkg/platform/circuit"
	"loanintake/pkg/platform/sentinel"
)

const defaultCacheTTL = 15 * time.Minute

// Service is the Reference Data Cache. It never returns catalog errors to its
// callers: startup catalogs fall back to built-in defaults, dependent catalogs
// fall back to an empty list.
type Service struct {
	provider Provider
	cache    CatalogCache
	cacheTTL time.Duration
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type ServiceOption func(*Service)

func WithCache(cache CatalogCache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithBreaker skips the provider while b is open so that fallbacks are
// served without waiting on a failing backend.
func WithBreaker(b *circuit.Breaker) ServiceOption {
	return func(s *Service) {
		s.breaker = b
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(provider Provider, opts ...ServiceOption) (*Service, error) {
	if provider == nil {
		return nil, errors.New("reference provider is required")
	}
	s := &Service{
		provider: provider,
		cacheTTL: defaultCacheTTL,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoadAll fetches every startup catalog concurrently. Each catalog fails
// independently and is replaced by its built-in default; no fetch blocks or
// cancels another.
func (s *Service) LoadAll(ctx context.Context) Catalogs {
	var (
		mu     sync.Mutex
		result = make(Catalogs, len(StartupCatalogs))
	)

	// A plain group; errgroup.WithContext would cancel siblings on failure.
	var g errgroup.Group
	for _, name := range StartupCatalogs {
		g.Go(func() error {
			options := s.loadCatalog(ctx, name)
			mu.Lock()
			result[name] = options
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (s *Service) loadCatalog(ctx context.Context, name CatalogName) []Option {
	key := string(name)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached
	}

	raw, err := s.call(ctx, func() ([]RawEntry, error) { return s.fetch(ctx, name) })
	if err == nil {
		options := Normalize(name, raw)
		if len(options) > 0 {
			s.toCache(ctx, key, options)
			return options
		}
		err = upstream.NewProviderError(upstream.ErrorBadData, "reference", "catalog is empty", nil)
	}

	s.logger.WarnContext(ctx, "reference catalog unavailable, using defaults",
		"catalog", name,
		"category", upstream.GetCategory(err),
		"error", err,
	)
	s.metrics.IncrementCatalogFallback(key)
	return Defaults(name)
}

func (s *Service) fetch(ctx context.Context, name CatalogName) ([]RawEntry, error) {
	switch name {
	case CatalogCountries:
		return s.provider.GetCountries(ctx)
	case CatalogDzongkhags:
		return s.provider.GetDzongkhags(ctx)
	case CatalogMaritalStatuses:
		return s.provider.GetMaritalStatuses(ctx)
	case CatalogNationalities:
		return s.provider.GetNationalities(ctx)
	case CatalogIdentificationTypes:
		return s.provider.GetIdentificationTypes(ctx)
	case CatalogBanks:
		return s.provider.GetBanks(ctx)
	case CatalogOccupations:
		return s.provider.GetOccupations(ctx)
	case CatalogOrganizationTypes:
		return s.provider.GetOrganizationTypes(ctx)
	case CatalogPEPCategories:
		return s.provider.GetPEPCategories(ctx)
	default:
		return nil, fmt.Errorf("unknown startup catalog %q", name)
	}
}

// GewogsFor returns the gewogs of a dzongkhag, or an empty list on failure.
func (s *Service) GewogsFor(ctx context.Context, dzongkhagCode string) []Option {
	return s.dependent(ctx, CatalogGewogs, dzongkhagCode, "gewog", s.provider.GetGewogs)
}

// PEPSubCategoriesFor returns the sub-categories of a PEP category, or an
// empty list on failure.
func (s *Service) PEPSubCategoriesFor(ctx context.Context, categoryCode string) []Option {
	return s.dependent(ctx, CatalogPEPSubCategories, categoryCode, "pep_sub_category", s.provider.GetPEPSubCategories)
}

func (s *Service) dependent(
	ctx context.Context,
	name CatalogName,
	parent string,
	kind string,
	fetch func(context.Context, string) ([]RawEntry, error),
) []Option {
	if parent == "" {
		return []Option{}
	}
	key := string(name) + ":" + parent
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached
	}

	raw, err := s.call(ctx, func() ([]RawEntry, error) { return fetch(ctx, parent) })
	if err != nil {
		s.logger.WarnContext(ctx, "dependent catalog fetch failed",
			"catalog", name,
			"parent", parent,
			"category", upstream.GetCategory(err),
			"error", err,
		)
		s.metrics.IncrementDependentFetchFailure(kind)
		return []Option{}
	}

	options := Normalize(name, raw)
	if len(options) > 0 {
		s.toCache(ctx, key, options)
	}
	return options
}

// call runs fetch through the breaker when one is configured.
func (s *Service) call(ctx context.Context, fetch func() ([]RawEntry, error)) ([]RawEntry, error) {
	if s.breaker == nil {
		return fetch()
	}
	if !s.breaker.Allow() {
		return nil, upstream.NewProviderError(upstream.ErrorProviderOutage, "reference", "circuit open", nil)
	}
	raw, err := fetch()
	if err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "reference circuit opened", "breaker", s.breaker.Name(), "error", err)
		}
		return nil, err
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "reference circuit closed", "breaker", s.breaker.Name())
	}
	return raw, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]Option, bool) {
	if s.cache == nil {
		return nil, false
	}
	options, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "catalog cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return options, true
}

func (s *Service) toCache(ctx context.Context, key string, options []Option) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, options, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed", "key", key, "error", err)
	}
}
