// Package reference loads and holds the read-only lookup catalogs that feed
// every selection control in the application: countries, dzongkhags, banks,
// PEP categories and so on. Catalogs are loaded once per wizard and shared by
// reference across all party records.
package reference

import "strings"

// Option is the normalized projection of a raw catalog entry.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// CatalogName identifies one reference catalog.
type CatalogName string

const (
	CatalogCountries           CatalogName = "countries"
	CatalogDzongkhags          CatalogName = "dzongkhags"
	CatalogGewogs              CatalogName = "gewogs"
	CatalogMaritalStatuses     CatalogName = "marital_statuses"
	CatalogNationalities       CatalogName = "nationalities"
	CatalogIdentificationTypes CatalogName = "identification_types"
	CatalogBanks               CatalogName = "banks"
	CatalogOccupations         CatalogName = "occupations"
	CatalogOrganizationTypes   CatalogName = "organization_types"
	CatalogPEPCategories       CatalogName = "pep_categories"
	CatalogPEPSubCategories    CatalogName = "pep_sub_categories"
)

// StartupCatalogs are the catalogs fetched at wizard start. Gewogs and PEP
// sub-categories depend on a parent selection and are fetched on demand.
var StartupCatalogs = []CatalogName{
	CatalogCountries,
	CatalogDzongkhags,
	CatalogMaritalStatuses,
	CatalogNationalities,
	CatalogIdentificationTypes,
	CatalogBanks,
	CatalogOccupations,
	CatalogOrganizationTypes,
	CatalogPEPCategories,
}

// RawEntry is one catalog entry as returned by the provider. Field naming
// varies between catalogs; see ResolveCode and ResolveLabel.
type RawEntry map[string]any

// Catalogs maps catalog name to its normalized options. A loaded Catalogs value
// is never mutated.
type Catalogs map[CatalogName][]Option

// Options returns the options for name, or nil.
func (c Catalogs) Options(name CatalogName) []Option {
	if c == nil {
		return nil
	}
	return c[name]
}

// Find resolves value against a catalog, first by exact code then by
// case-insensitive label.
func (c Catalogs) Find(name CatalogName, value string) (Option, bool) {
	return FindOption(c.Options(name), value)
}

// LabelOf returns the label value resolves to, or value itself when it does
// not resolve.
func (c Catalogs) LabelOf(name CatalogName, value string) string {
	if opt, ok := c.Find(name, value); ok {
		return opt.Label
	}
	return value
}

// Canonical returns the catalog code for value. Labels are translated to their
// code; unknown values pass through unchanged.
func (c Catalogs) Canonical(name CatalogName, value string) string {
	if opt, ok := c.Find(name, value); ok {
		return opt.Code
	}
	return value
}

// FindOption resolves value against an option list.
func FindOption(options []Option, value string) (Option, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Option{}, false
	}
	for _, opt := range options {
		if opt.Code == value {
			return opt, true
		}
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Label, value) {
			return opt, true
		}
	}
	return Option{}, false
}
