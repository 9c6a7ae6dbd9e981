package reference

import (
	"context"
	"time"
)

// Provider is the reference data backend. Each operation returns the raw
// entries of one catalog in provider order.
type Provider interface {
	GetCountries(ctx context.Context) ([]RawEntry, error)
	GetDzongkhags(ctx context.Context) ([]RawEntry, error)
	GetGewogs(ctx context.Context, dzongkhagCode string) ([]RawEntry, error)
	GetMaritalStatuses(ctx context.Context) ([]RawEntry, error)
	GetNationalities(ctx context.Context) ([]RawEntry, error)
	GetIdentificationTypes(ctx context.Context) ([]RawEntry, error)
	GetBanks(ctx context.Context) ([]RawEntry, error)
	GetOccupations(ctx context.Context) ([]RawEntry, error)
	GetOrganizationTypes(ctx context.Context) ([]RawEntry, error)
	GetPEPCategories(ctx context.Context) ([]RawEntry, error)
	GetPEPSubCategories(ctx context.Context, categoryCode string) ([]RawEntry, error)
}

// CatalogCache stores normalized catalogs between wizard sessions.
// Get returns sentinel.ErrNotFound on a miss.
type CatalogCache interface {
	Get(ctx context.Context, key string) ([]Option, error)
	Set(ctx context.Context, key string, options []Option, ttl time.Duration) error
}
