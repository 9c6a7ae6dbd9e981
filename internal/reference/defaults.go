package reference

// Built-in lists served when a catalog cannot be fetched. They are small on
// purpose: enough to complete an application for the common case.
var defaultCatalogs = Catalogs{
	CatalogCountries: {
		{Code: "BT", Label: "Bhutan"},
		{Code: "IN", Label: "India"},
	},
	CatalogDzongkhags: {
		{Code: "THI", Label: "Thimphu"},
		{Code: "PAR", Label: "Paro"},
		{Code: "CHU", Label: "Chukha"},
	},
	CatalogMaritalStatuses: {
		{Code: "S", Label: "Single/Unmarried"},
		{Code: "M", Label: "Married"},
		{Code: "D", Label: "Divorced"},
		{Code: "W", Label: "Widowed"},
	},
	CatalogNationalities: {
		{Code: "BTN", Label: "Bhutanese"},
		{Code: "IND", Label: "Indian"},
	},
	CatalogIdentificationTypes: {
		{Code: "cid", Label: "Citizenship Identity Card"},
		{Code: "passport", Label: "Passport"},
		{Code: "work_permit", Label: "Work Permit"},
	},
	CatalogBanks: {
		{Code: "BOBL", Label: "Bank of Bhutan"},
		{Code: "BNBL", Label: "Bhutan National Bank"},
		{Code: "DPNBL", Label: "Druk PNB Bank"},
		{Code: "TBANK", Label: "T Bank"},
		{Code: "BDBL", Label: "Bhutan Development Bank"},
	},
	CatalogOccupations: {
		{Code: "salaried", Label: "Salaried"},
		{Code: "self_employed", Label: "Self Employed"},
		{Code: "business", Label: "Business"},
	},
	CatalogOrganizationTypes: {
		{Code: "government", Label: "Government"},
		{Code: "corporate", Label: "Corporate"},
		{Code: "private", Label: "Private"},
	},
	CatalogPEPCategories: {
		{Code: "domestic", Label: "Domestic PEP"},
		{Code: "foreign", Label: "Foreign PEP"},
		{Code: "international", Label: "International Organisation PEP"},
	},
}

// Defaults returns a copy of the built-in list for name.
func Defaults(name CatalogName) []Option {
	return append([]Option(nil), defaultCatalogs[name]...)
}
