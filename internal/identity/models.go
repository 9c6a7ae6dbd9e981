// Package identity runs the identity-verification lookup that pre-fills a
// party record from the core customer registry.
package identity

import (
	"strings"
	"time"
)

// LookupType is the only lookup kind the registry supports: individuals.
const LookupType = "I"

// LookupRequest is the wire shape of a registry lookup.
type LookupRequest struct {
	Type                     string `json:"type"`
	IdentificationTypePKCode string `json:"identification_type_pk_code"`
	IdentityNo               string `json:"identity_no"`
}

// NewLookupRequest builds the request for an identification type and number.
func NewLookupRequest(identificationType, identificationNumber string) LookupRequest {
	return LookupRequest{
		Type:                     LookupType,
		IdentificationTypePKCode: identificationType,
		IdentityNo:               identificationNumber,
	}
}

// LookupResponse is the registry answer.
type LookupResponse struct {
	Found  bool         `json:"found"`
	Record *RawCustomer `json:"record,omitempty"`
}

// RawCustomer is a customer as the registry returns it.
type RawCustomer struct {
	IdentificationType string `json:"identification_type_pk_code"`
	IdentityNo         string `json:"identity_no"`
	IDIssueDate        string `json:"id_issue_date"`
	IDExpiryDate       string `json:"id_expiry_date"`

	Salutation    string `json:"salutation"`
	CustomerName  string `json:"customer_name"`
	Gender        string `json:"gender"`
	DateOfBirth   string `json:"date_of_birth"`
	MaritalStatus string `json:"marital_status"`
	Nationality   string `json:"nationality"`
	MobileNo      string `json:"mobile_no"`
	EmailID       string `json:"email_id"`
	TPNNo         string `json:"tpn_no"`

	SpouseName       string `json:"spouse_name"`
	SpouseIdentityNo string `json:"spouse_identity_no"`
	SpouseMobileNo   string `json:"spouse_mobile_no"`

	PermCountry   string `json:"perm_country"`
	PermDzongkhag string `json:"perm_dzongkhag"`
	PermGewog     string `json:"perm_gewog"`
	PermVillage   string `json:"perm_village"`
	PermThramNo   string `json:"perm_thram_no"`
	PermHouseNo   string `json:"perm_house_no"`

	CurrCountry   string `json:"curr_country"`
	CurrDzongkhag string `json:"curr_dzongkhag"`
	CurrGewog     string `json:"curr_gewog"`
	CurrStreet    string `json:"curr_street"`

	BankName  string `json:"bank_name"`
	AccountNo string `json:"account_no"`

	PEPFlag        string `json:"pep_flag"`
	PEPCategory    string `json:"pep_category"`
	PEPSubCategory string `json:"pep_sub_category"`
	PEPRelated     string `json:"pep_related"`

	EmploymentStatus string `json:"employment_status"`
	Occupation       string `json:"occupation"`
	EmployerName     string `json:"employer_name"`
	Designation      string `json:"designation"`
	GrossIncome      string `json:"gross_income"`
}

// Address is the mapped shape of one address block.
type Address struct {
	Country         string `json:"country,omitempty"`
	RegionPrimary   string `json:"regionPrimary,omitempty"`
	RegionSecondary string `json:"regionSecondary,omitempty"`
	Street          string `json:"street,omitempty"`
	Thram           string `json:"thram,omitempty"`
	House           string `json:"house,omitempty"`
}

// MappedRecord is a registry customer renamed into party record fields.
// Dates are calendar dates (YYYY-MM-DD).
type MappedRecord struct {
	IdentificationType   string  `json:"identificationType,omitempty"`
	IdentificationNumber string  `json:"identificationNumber,omitempty"`
	IdentificationIssue  string  `json:"identificationIssueDate,omitempty"`
	IdentificationExpiry string  `json:"identificationExpiryDate,omitempty"`
	Salutation           string  `json:"salutation,omitempty"`
	Name                 string  `json:"name,omitempty"`
	Gender               string  `json:"gender,omitempty"`
	DateOfBirth          string  `json:"dateOfBirth,omitempty"`
	MaritalStatus        string  `json:"maritalStatus,omitempty"`
	Nationality          string  `json:"nationality,omitempty"`
	ContactNumber        string  `json:"contactNumber,omitempty"`
	Email                string  `json:"email,omitempty"`
	TPN                  string  `json:"tpn,omitempty"`
	SpouseName           string  `json:"spouseName,omitempty"`
	SpouseIdentification string  `json:"spouseIdentificationNumber,omitempty"`
	SpouseContact        string  `json:"spouseContactNumber,omitempty"`
	Permanent            Address `json:"permanentAddress"`
	Current              Address `json:"currentAddress"`
	Bank                 string  `json:"bank,omitempty"`
	AccountNumber        string  `json:"accountNumber,omitempty"`
	PEPPerson            string  `json:"pepPerson,omitempty"`
	PEPCategory          string  `json:"pepCategory,omitempty"`
	PEPSubCategory       string  `json:"pepSubCategory,omitempty"`
	PEPRelated           string  `json:"pepRelated,omitempty"`
	EmploymentStatus     string  `json:"employmentStatus,omitempty"`
	Occupation           string  `json:"occupation,omitempty"`
	Employer             string  `json:"employer,omitempty"`
	Designation          string  `json:"designation,omitempty"`
	GrossIncome          string  `json:"grossIncome,omitempty"`
}

// Usable reports whether a response carries a record worth offering.
func (r *LookupResponse) Usable() bool {
	return r != nil && r.Found && r.Record != nil && strings.TrimSpace(r.Record.CustomerName) != ""
}

// Map renames a raw customer into record fields.
func Map(raw RawCustomer) MappedRecord {
	return MappedRecord{
		IdentificationType:   trim(raw.IdentificationType),
		IdentificationNumber: trim(raw.IdentityNo),
		IdentificationIssue:  NormalizeDate(raw.IDIssueDate),
		IdentificationExpiry: NormalizeDate(raw.IDExpiryDate),
		Salutation:           trim(raw.Salutation),
		Name:                 trim(raw.CustomerName),
		Gender:               trim(raw.Gender),
		DateOfBirth:          NormalizeDate(raw.DateOfBirth),
		MaritalStatus:        trim(raw.MaritalStatus),
		Nationality:          trim(raw.Nationality),
		ContactNumber:        trim(raw.MobileNo),
		Email:                trim(raw.EmailID),
		TPN:                  trim(raw.TPNNo),
		SpouseName:           trim(raw.SpouseName),
		SpouseIdentification: trim(raw.SpouseIdentityNo),
		SpouseContact:        trim(raw.SpouseMobileNo),
		Permanent: Address{
			Country:         trim(raw.PermCountry),
			RegionPrimary:   trim(raw.PermDzongkhag),
			RegionSecondary: trim(raw.PermGewog),
			Street:          trim(raw.PermVillage),
			Thram:           trim(raw.PermThramNo),
			House:           trim(raw.PermHouseNo),
		},
		Current: Address{
			Country:         trim(raw.CurrCountry),
			RegionPrimary:   trim(raw.CurrDzongkhag),
			RegionSecondary: trim(raw.CurrGewog),
			Street:          trim(raw.CurrStreet),
		},
		Bank:             trim(raw.BankName),
		AccountNumber:    trim(raw.AccountNo),
		PEPPerson:        trim(raw.PEPFlag),
		PEPCategory:      trim(raw.PEPCategory),
		PEPSubCategory:   trim(raw.PEPSubCategory),
		PEPRelated:       trim(raw.PEPRelated),
		EmploymentStatus: trim(raw.EmploymentStatus),
		Occupation:       trim(raw.Occupation),
		Employer:         trim(raw.EmployerName),
		Designation:      trim(raw.Designation),
		GrossIncome:      trim(raw.GrossIncome),
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
	"02/01/2006",
	"02-01-2006",
}

// NormalizeDate converts a registry date to YYYY-MM-DD. Unparseable values
// become empty so they never reach a date field.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return ""
}

func trim(s string) string { return strings.TrimSpace(s) }
