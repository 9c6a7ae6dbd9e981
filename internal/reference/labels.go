package reference

import (
	"encoding/json"
	"strconv"
	"strings"

	pkgstrings "loanintake/pkg/platform/strings"
)

// UnknownLabel is used when no candidate label field is present.
const UnknownLabel = "Unknown"

var (
	codeFields  = []string{"code", "id", "pk_code", "value"}
	labelFields = []string{"name", "label", "description", "title", "value"}
)

// catalogCodeFields and catalogLabelFields are tried before the generic lists.
var catalogCodeFields = map[CatalogName][]string{
	CatalogCountries:           {"country_pk_code", "country_code"},
	CatalogDzongkhags:          {"dzongkhag_pk_code", "dzongkhag_code"},
	CatalogGewogs:              {"gewog_pk_code", "gewog_code"},
	CatalogIdentificationTypes: {"identification_type_pk_code"},
	CatalogBanks:               {"bank_pk_code", "bank_code"},
	CatalogPEPCategories:       {"pep_category_pk_code"},
	CatalogPEPSubCategories:    {"pep_sub_category_pk_code"},
}

var catalogLabelFields = map[CatalogName][]string{
	CatalogCountries:           {"country_name", "country"},
	CatalogDzongkhags:          {"dzongkhag_name", "dzongkhag"},
	CatalogGewogs:              {"gewog_name", "gewog"},
	CatalogMaritalStatuses:     {"marital_status"},
	CatalogNationalities:       {"nationality"},
	CatalogIdentificationTypes: {"identification_type", "identity_type"},
	CatalogBanks:               {"bank_name"},
	CatalogOccupations:         {"occupation"},
	CatalogOrganizationTypes:   {"organization_type"},
	CatalogPEPCategories:       {"pep_category"},
	CatalogPEPSubCategories:    {"pep_sub_category"},
}

// ResolveLabel returns the first non-empty candidate label field, or UnknownLabel.
func ResolveLabel(name CatalogName, entry RawEntry) string {
	if v := firstField(entry, catalogLabelFields[name]); v != "" {
		return v
	}
	if v := firstField(entry, labelFields); v != "" {
		return v
	}
	return UnknownLabel
}

// ResolveCode returns the first non-empty candidate code field. Entries with no
// code field use their label as code so they remain selectable.
func ResolveCode(name CatalogName, entry RawEntry) string {
	if v := firstField(entry, catalogCodeFields[name]); v != "" {
		return v
	}
	if v := firstField(entry, codeFields); v != "" {
		return v
	}
	return ResolveLabel(name, entry)
}

// Normalize projects raw entries onto options, dropping entries that resolve to
// neither a code nor a label and keeping the first of any duplicate codes.
func Normalize(name CatalogName, entries []RawEntry) []Option {
	options := make([]Option, 0, len(entries))
	for _, entry := range entries {
		label := ResolveLabel(name, entry)
		code := ResolveCode(name, entry)
		if code == UnknownLabel && label == UnknownLabel {
			continue
		}
		options = append(options, Option{Code: code, Label: label})
	}
	return pkgstrings.DedupeBy(options, func(o Option) string { return o.Code })
}

func firstField(entry RawEntry, fields []string) string {
	for _, f := range fields {
		if v, ok := entry[f]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
