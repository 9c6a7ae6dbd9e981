package reference_test

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"loanintake/internal/platform/metrics"
	"loanintake/internal/reference"
	"loanintake/internal/reference/mocks"
	"loanintake/internal/reference/referencetest"
	"loanintake/internal/reference/store"
	"loanintake/internal/upstream"
	"loanintake/pkg/platform/circuit"
	"loanintake/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	provider *referencetest.Provider
	metrics  *metrics.Metrics
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.provider = referencetest.New()
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
}

func (s *ServiceSuite) newService(opts ...reference.ServiceOption) *reference.Service {
	opts = append([]reference.ServiceOption{reference.WithMetrics(s.metrics)}, opts...)
	svc, err := reference.New(s.provider, opts...)
	s.Require().NoError(err)
	return svc
}

// =============================================================================
// Construction
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("rejects nil provider", func() {
		_, err := reference.New(nil)
		s.Error(err)
	})
}

// =============================================================================
// Startup catalogs
// =============================================================================

func (s *ServiceSuite) TestLoadAll() {
	s.Run("normalizes provider catalogs", func() {
		s.provider.WithCatalog(reference.CatalogBanks,
			reference.RawEntry{"pk_code": "RMA", "bank_name": "Royal Monetary Authority"},
			reference.RawEntry{"pk_code": "RMA", "bank_name": "Duplicate"},
		)
		catalogs := s.newService().LoadAll(s.ctx)
		s.Equal([]reference.Option{{Code: "RMA", Label: "Royal Monetary Authority"}},
			catalogs.Options(reference.CatalogBanks))
	})

	s.Run("each failing catalog falls back to its own defaults", func() {
		s.SetupTest()
		s.provider.
			WithCatalog(reference.CatalogCountries, reference.RawEntry{"country_pk_code": "NP", "country_name": "Nepal"}).
			Fail(referencetest.CatalogKey(reference.CatalogBanks), upstream.NewProviderError(upstream.ErrorProviderOutage, "reference", "down", nil))

		catalogs := s.newService().LoadAll(s.ctx)

		s.Equal([]reference.Option{{Code: "NP", Label: "Nepal"}}, catalogs.Options(reference.CatalogCountries))
		s.Equal(reference.Defaults(reference.CatalogBanks), catalogs.Options(reference.CatalogBanks))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.CatalogFallbacks.WithLabelValues("banks")))
	})

	s.Run("every startup catalog is present", func() {
		s.SetupTest()
		catalogs := s.newService().LoadAll(s.ctx)
		for _, name := range reference.StartupCatalogs {
			s.NotEmpty(catalogs.Options(name), "catalog %s", name)
		}
	})

	s.Run("empty catalog counts as unavailable", func() {
		s.SetupTest()
		catalogs := s.newService().LoadAll(s.ctx)
		s.Equal(reference.Defaults(reference.CatalogMaritalStatuses), catalogs.Options(reference.CatalogMaritalStatuses))
	})

	s.Run("a slow catalog does not delay the others from completing", func() {
		s.SetupTest()
		s.provider.WithCatalog(reference.CatalogBanks, reference.RawEntry{"code": "X", "name": "X Bank"})
		gate := s.provider.Hold(referencetest.CatalogKey(reference.CatalogCountries))

		done := make(chan reference.Catalogs, 1)
		go func() { done <- s.newService().LoadAll(s.ctx) }()

		<-gate.Entered()
		s.Eventually(func() bool {
			return s.provider.Calls(referencetest.CatalogKey(reference.CatalogBanks)) == 1
		}, time.Second, 5*time.Millisecond)
		gate.Release()

		catalogs := <-done
		s.Equal("X Bank", catalogs.LabelOf(reference.CatalogBanks, "X"))
	})

	s.Run("cache hit skips the provider", func() {
		s.SetupTest()
		cache := store.NewInMemory()
		s.Require().NoError(cache.Set(s.ctx, string(reference.CatalogBanks),
			[]reference.Option{{Code: "C", Label: "Cached Bank"}}, time.Minute))

		catalogs := s.newService(reference.WithCache(cache, time.Minute)).LoadAll(s.ctx)

		s.Equal("Cached Bank", catalogs.LabelOf(reference.CatalogBanks, "C"))
		s.Zero(s.provider.Calls(referencetest.CatalogKey(reference.CatalogBanks)))
	})

	s.Run("successful fetch populates the cache", func() {
		s.SetupTest()
		cache := store.NewInMemory()
		s.provider.WithCatalog(reference.CatalogOccupations, reference.RawEntry{"code": "ENG", "name": "Engineer"})

		s.newService(reference.WithCache(cache, time.Minute)).LoadAll(s.ctx)

		cached, err := cache.Get(s.ctx, string(reference.CatalogOccupations))
		s.Require().NoError(err)
		s.Equal([]reference.Option{{Code: "ENG", Label: "Engineer"}}, cached)
	})
}

// =============================================================================
// Dependent catalogs
// =============================================================================

func (s *ServiceSuite) TestGewogsFor() {
	s.Run("empty parent yields empty list without a fetch", func() {
		s.SetupTest()
		s.Empty(s.newService().GewogsFor(s.ctx, ""))
		s.Zero(s.provider.Calls(referencetest.GewogKey("")))
	})

	s.Run("returns the gewogs of the dzongkhag", func() {
		s.SetupTest()
		s.provider.WithGewogs("THI",
			reference.RawEntry{"code": "KAW", "gewog_name": "Kawang"},
			reference.RawEntry{"code": "CHA", "gewog_name": "Chang"},
		)
		s.Equal([]reference.Option{{Code: "KAW", Label: "Kawang"}, {Code: "CHA", Label: "Chang"}},
			s.newService().GewogsFor(s.ctx, "THI"))
	})

	s.Run("failure yields empty list and is counted", func() {
		s.SetupTest()
		s.provider.Fail(referencetest.GewogKey("PAR"), errors.New("connection reset"))

		got := s.newService().GewogsFor(s.ctx, "PAR")

		s.NotNil(got)
		s.Empty(got)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.DependentFetchFailures.WithLabelValues("gewog")))
	})
}

func (s *ServiceSuite) TestPEPSubCategoriesFor() {
	s.Run("returns sub-categories of the category", func() {
		s.SetupTest()
		s.provider.WithSubCategories("domestic", reference.RawEntry{"code": "MIN", "name": "Minister"})
		s.Equal([]reference.Option{{Code: "MIN", Label: "Minister"}},
			s.newService().PEPSubCategoriesFor(s.ctx, "domestic"))
	})

	s.Run("failure yields empty list", func() {
		s.SetupTest()
		s.provider.Fail(referencetest.SubCategoryKey("foreign"), errors.New("timeout"))
		s.Empty(s.newService().PEPSubCategoriesFor(s.ctx, "foreign"))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.DependentFetchFailures.WithLabelValues("pep_sub_category")))
	})

	s.Run("second lookup is served from cache", func() {
		s.SetupTest()
		s.provider.WithSubCategories("domestic", reference.RawEntry{"code": "MP", "name": "Member of Parliament"})
		svc := s.newService(reference.WithCache(store.NewInMemory(), time.Minute))

		svc.PEPSubCategoriesFor(s.ctx, "domestic")
		svc.PEPSubCategoriesFor(s.ctx, "domestic")

		s.Equal(1, s.provider.Calls(referencetest.SubCategoryKey("domestic")))
	})
}

// =============================================================================
// Circuit breaker
// =============================================================================

func (s *ServiceSuite) TestBreaker() {
	s.Run("open circuit skips the provider", func() {
		s.SetupTest()
		s.provider.Fail(referencetest.GewogKey("PAR"), errors.New("connection refused"))
		breaker := circuit.New("reference", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
		svc := s.newService(reference.WithBreaker(breaker))

		svc.GewogsFor(s.ctx, "PAR")
		svc.GewogsFor(s.ctx, "PAR")
		s.True(breaker.IsOpen())

		s.Empty(svc.GewogsFor(s.ctx, "PAR"))
		s.Equal(2, s.provider.Calls(referencetest.GewogKey("PAR")))
		s.Equal(3.0, testutil.ToFloat64(s.metrics.DependentFetchFailures.WithLabelValues("gewog")))
	})

	s.Run("open circuit serves startup defaults", func() {
		s.SetupTest()
		breaker := circuit.New("reference", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
		breaker.RecordFailure()

		catalogs := s.newService(reference.WithBreaker(breaker)).LoadAll(s.ctx)

		s.Equal(reference.Defaults(reference.CatalogBanks), catalogs.Options(reference.CatalogBanks))
		s.Zero(s.provider.Calls(referencetest.CatalogKey(reference.CatalogBanks)))
	})
}

// =============================================================================
// Provider and cache collaborators
// =============================================================================

func (s *ServiceSuite) TestCollaborators() {
	gewogs := []reference.RawEntry{{"code": "KAW", "gewog_name": "Kawang"}}
	want := []reference.Option{{Code: "KAW", Label: "Kawang"}}

	s.Run("cache miss fetches once and stores the result", func() {
		ctrl := gomock.NewController(s.T())
		provider := mocks.NewMockProvider(ctrl)
		cache := mocks.NewMockCatalogCache(ctrl)

		cache.EXPECT().Get(gomock.Any(), "gewogs:THI").Return(nil, sentinel.ErrNotFound)
		provider.EXPECT().GetGewogs(gomock.Any(), "THI").Return(gewogs, nil).Times(1)
		cache.EXPECT().Set(gomock.Any(), "gewogs:THI", want, time.Minute).Return(nil)

		svc, err := reference.New(provider, reference.WithCache(cache, time.Minute))
		s.Require().NoError(err)
		s.Equal(want, svc.GewogsFor(context.Background(), "THI"))
	})

	s.Run("cache hit skips the provider", func() {
		ctrl := gomock.NewController(s.T())
		provider := mocks.NewMockProvider(ctrl)
		cache := mocks.NewMockCatalogCache(ctrl)

		cache.EXPECT().Get(gomock.Any(), "gewogs:THI").Return(want, nil)

		svc, err := reference.New(provider, reference.WithCache(cache, time.Minute))
		s.Require().NoError(err)
		s.Equal(want, svc.GewogsFor(context.Background(), "THI"))
	})

	s.Run("cache failures fall through to the provider", func() {
		ctrl := gomock.NewController(s.T())
		provider := mocks.NewMockProvider(ctrl)
		cache := mocks.NewMockCatalogCache(ctrl)

		cache.EXPECT().Get(gomock.Any(), "gewogs:THI").Return(nil, errors.New("connection refused"))
		provider.EXPECT().GetGewogs(gomock.Any(), "THI").Return(gewogs, nil)
		cache.EXPECT().Set(gomock.Any(), "gewogs:THI", want, time.Minute).Return(errors.New("connection refused"))

		svc, err := reference.New(provider, reference.WithCache(cache, time.Minute))
		s.Require().NoError(err)
		s.Equal(want, svc.GewogsFor(context.Background(), "THI"))
	})
}
