package geo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"loanintake/internal/geo"
	"loanintake/internal/reference"
	"loanintake/internal/reference/referencetest"
	"loanintake/pkg/domain"
)

var countries = []reference.Option{
	{Code: "BT", Label: "Kingdom of Bhutan"},
	{Code: "IN", Label: "India"},
}

func TestIsBhutan(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"catalog code", "BT", true},
		{"raw label", "Bhutan", true},
		{"raw label any case", "BHUTAN", true},
		{"other code", "IN", false},
		{"unknown code", "XX", false},
		{"blank", "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geo.IsBhutan(tt.value, countries))
		})
	}
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, geo.ModeStructured, geo.ModeFor("BT", countries))
	assert.Equal(t, geo.ModeFreeform, geo.ModeFor("IN", countries))
	assert.Equal(t, geo.ModeFreeform, geo.ModeFor("", countries))
}

type ResolverSuite struct {
	suite.Suite
	ctx      context.Context
	provider *referencetest.Provider
	resolver *geo.Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctx = context.Background()
	s.provider = referencetest.New().
		WithGewogs("THI", reference.RawEntry{"code": "KAW", "gewog_name": "Kawang"}).
		WithGewogs("PAR", reference.RawEntry{"code": "DOP", "gewog_name": "Dopshari"})
	svc, err := reference.New(s.provider)
	s.Require().NoError(err)
	s.resolver = geo.NewResolver(countries, svc)
}

func (s *ResolverSuite) TestSelectDzongkhag() {
	s.Run("stores gewogs against the owning record only", func() {
		r1 := geo.Key{Record: domain.NewRecordID(), Block: geo.BlockPermanent}
		r2 := geo.Key{Record: domain.NewRecordID(), Block: geo.BlockPermanent}

		fetch, ok := s.resolver.SelectDzongkhag(r1, "THI")
		s.Require().True(ok)
		s.True(s.resolver.Run(s.ctx, fetch))

		s.Equal([]reference.Option{{Code: "KAW", Label: "Kawang"}}, s.resolver.Gewogs(r1))
		s.Empty(s.resolver.Gewogs(r2))
		s.Equal(1, s.provider.Calls(referencetest.GewogKey("THI")))
	})

	s.Run("late response for a superseded dzongkhag is discarded", func() {
		s.SetupTest()
		key := geo.Key{Record: domain.NewRecordID(), Block: geo.BlockCurrent}
		gate := s.provider.Hold(referencetest.GewogKey("THI"))

		first, _ := s.resolver.SelectDzongkhag(key, "THI")
		done := make(chan bool, 1)
		go func() { done <- s.resolver.Run(s.ctx, first) }()
		<-gate.Entered()

		second, _ := s.resolver.SelectDzongkhag(key, "PAR")
		s.True(s.resolver.Run(s.ctx, second))

		gate.Release()
		s.False(<-done)
		s.Equal([]reference.Option{{Code: "DOP", Label: "Dopshari"}}, s.resolver.Gewogs(key))
	})

	s.Run("blank dzongkhag needs no fetch", func() {
		s.SetupTest()
		_, ok := s.resolver.SelectDzongkhag(geo.Key{Record: domain.NewRecordID()}, "")
		s.False(ok)
	})
}

func (s *ResolverSuite) TestCountryChanged() {
	s.Run("leaving Bhutan drops gewog options", func() {
		key := geo.Key{Record: domain.NewRecordID(), Block: geo.BlockPermanent}
		fetch, _ := s.resolver.SelectDzongkhag(key, "THI")
		s.resolver.Run(s.ctx, fetch)

		s.True(s.resolver.CountryChanged(key, "BT", "IN"))
		s.Empty(s.resolver.Gewogs(key))
	})

	s.Run("same mode keeps options", func() {
		s.SetupTest()
		key := geo.Key{Record: domain.NewRecordID(), Block: geo.BlockPermanent}
		fetch, _ := s.resolver.SelectDzongkhag(key, "THI")
		s.resolver.Run(s.ctx, fetch)

		s.False(s.resolver.CountryChanged(key, "BT", "Bhutan"))
		s.NotEmpty(s.resolver.Gewogs(key))
	})
}

func (s *ResolverSuite) TestForget() {
	record := domain.NewRecordID()
	other := geo.Key{Record: domain.NewRecordID(), Block: geo.BlockPermanent}
	for _, key := range []geo.Key{{Record: record, Block: geo.BlockPermanent}, {Record: record, Block: geo.BlockCurrent}, other} {
		fetch, _ := s.resolver.SelectDzongkhag(key, "THI")
		s.resolver.Run(s.ctx, fetch)
	}

	s.resolver.Forget(record)

	s.Empty(s.resolver.Gewogs(geo.Key{Record: record, Block: geo.BlockPermanent}))
	s.NotEmpty(s.resolver.Gewogs(other))
}
