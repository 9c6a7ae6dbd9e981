// Package referencetest provides a programmable reference.Provider for tests
// that need to control catalog contents, failures and response timing.
package referencetest

import (
	"context"
	"sync"

	"loanintake/internal/reference"
)

// Provider serves canned catalogs. Unconfigured catalogs return an empty list.
type Provider struct {
	mu            sync.Mutex
	catalogs      map[reference.CatalogName][]reference.RawEntry
	failures      map[string]error
	gewogs        map[string][]reference.RawEntry
	subCategories map[string][]reference.RawEntry
	gates         map[string]*Gate
	calls         map[string]int
}

func New() *Provider {
	return &Provider{
		catalogs:      make(map[reference.CatalogName][]reference.RawEntry),
		failures:      make(map[string]error),
		gewogs:        make(map[string][]reference.RawEntry),
		subCategories: make(map[string][]reference.RawEntry),
		gates:         make(map[string]*Gate),
		calls:         make(map[string]int),
	}
}

// GewogKey and SubCategoryKey name dependent fetches for Fail, Hold and Calls.
func GewogKey(dzongkhag string) string  { return "gewogs:" + dzongkhag }
func SubCategoryKey(cat string) string  { return "pep_sub_categories:" + cat }
func CatalogKey(n reference.CatalogName) string { return string(n) }

func (p *Provider) WithCatalog(name reference.CatalogName, entries ...reference.RawEntry) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalogs[name] = entries
	return p
}

func (p *Provider) WithGewogs(dzongkhag string, entries ...reference.RawEntry) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gewogs[dzongkhag] = entries
	return p
}

func (p *Provider) WithSubCategories(category string, entries ...reference.RawEntry) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subCategories[category] = entries
	return p
}

// Fail makes the fetch named by key return err.
func (p *Provider) Fail(key string, err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[key] = err
	return p
}

// Hold makes the next fetches named by key block until the gate is released.
func (p *Provider) Hold(key string) *Gate {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := &Gate{entered: make(chan struct{}), release: make(chan struct{})}
	p.gates[key] = g
	return g
}

// Calls reports how many times the fetch named by key ran.
func (p *Provider) Calls(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[key]
}

// Gate lets a test observe that a fetch started and choose when it returns.
type Gate struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

// Entered is closed once the held fetch has been issued.
func (g *Gate) Entered() <-chan struct{} { return g.entered }

// Release lets the held fetch return.
func (g *Gate) Release() { close(g.release) }

func (p *Provider) serve(ctx context.Context, key string, entries []reference.RawEntry) ([]reference.RawEntry, error) {
	p.mu.Lock()
	p.calls[key]++
	err := p.failures[key]
	gate := p.gates[key]
	p.mu.Unlock()

	if gate != nil {
		gate.once.Do(func() { close(gate.entered) })
		select {
		case <-gate.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return append([]reference.RawEntry(nil), entries...), nil
}

func (p *Provider) catalog(ctx context.Context, name reference.CatalogName) ([]reference.RawEntry, error) {
	p.mu.Lock()
	entries := p.catalogs[name]
	p.mu.Unlock()
	return p.serve(ctx, CatalogKey(name), entries)
}

func (p *Provider) GetCountries(ctx context.Context) ([]reference.RawEntry, error) {
	return p.catalog(ctx, reference.CatalogCountries)
}

func (p *Provider) GetDzongkhags(ctx context.Context) ([]reference.RawEntry, error) {
	return p.catalog(ctx, reference.CatalogDzongkhags)
}

func (p *Provider) GetGewogs(ctx context.Context, dzongkhagCode string) ([]reference.RawEntry, error) {
	p.mu.Lock()
	entries := p.gewogs[dzongkhagCode]
	p.mu.Unlock()
	return p.serve(ctx, GewogKey(dzongkhagCode), entries)
}

func (p *Provider) GetMaritalStatuses(ctx context.Context) ([]reference.RawEntry, error) {
	return p.catalog(ctx, reference.CatalogMaritalStatuses)
}

func (p *Provider) GetNationalities(ctx context.Context) ([]reference.RawEntry, error) {
	return p.catalog(ctx, reference.CatalogNationalities)
}

func (p *Provider) GetIdentificationTypes(ctx context.Context) ([]reference.RawEntry, error) {
	return p.catalog(ctx, reference.CatalogIdentificationTypes)
}

func (p *Provider) GetBanks(ctx context.Context) ([]reference.RawEntry, error) {
	return p.catalog(ctx, reference.CatalogBanks)
}

func (p *Provider) GetOccupations(ctx context.Context) ([]reference.RawEntry, error) {
	return p.catalog(ctx, reference.CatalogOccupations)
}

func (p *Provider) GetOrganizationTypes(ctx context.Context) ([]reference.RawEntry, error) {
	return p.catalog(ctx, reference.CatalogOrganizationTypes)
}

func (p *Provider) GetPEPCategories(ctx context.Context) ([]reference.RawEntry, error) {
	return p.catalog(ctx, reference.CatalogPEPCategories)
}

func (p *Provider) GetPEPSubCategories(ctx context.Context, categoryCode string) ([]reference.RawEntry, error) {
	p.mu.Lock()
	entries := p.subCategories[categoryCode]
	p.mu.Unlock()
	return p.serve(ctx, SubCategoryKey(categoryCode), entries)
}

var _ reference.Provider = (*Provider)(nil)
