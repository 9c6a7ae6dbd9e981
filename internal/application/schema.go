package application

import (
	"fmt"
	"sort"

	"loanintake/internal/geo"
	"loanintake/internal/pep"
	"loanintake/internal/reference"
	dErrors "loanintake/pkg/domain-errors"
)

// Kind is the value kind of a field. It selects normalization on update and
// the format rule applied by validation.
type Kind string

const (
	KindText    Kind = "text"
	KindDate    Kind = "date"
	KindSelect  Kind = "select"
	KindAnswer  Kind = "answer"
	KindNumeric Kind = "numeric"
	KindDigits  Kind = "digits"
	KindEmail   Kind = "email"
)

// Field paths of a party record.
const (
	FieldIdentificationType       = "identificationType"
	FieldIdentificationNumber     = "identificationNumber"
	FieldIdentificationIssueDate  = "identificationIssueDate"
	FieldIdentificationExpiryDate = "identificationExpiryDate"
	FieldSalutation               = "salutation"
	FieldName                     = "name"
	FieldNationality              = "nationality"
	FieldGender                   = "gender"
	FieldDateOfBirth              = "dateOfBirth"
	FieldMaritalStatus            = "maritalStatus"
	FieldSpouseName               = "spouse.name"
	FieldSpouseIdentification     = "spouse.identificationNumber"
	FieldSpouseContact            = "spouse.contactNumber"
	FieldContactNumber            = "contactNumber"
	FieldEmail                    = "email"
	FieldTPN                      = "tpn"
	FieldBank                     = "bank.bank"
	FieldAccountNumber            = "bank.accountNumber"
	FieldPEPPerson                = "pepPerson"
	FieldPEPCategory              = "pepCategory"
	FieldPEPSubCategory           = "pepSubCategory"
	FieldPEPRelated               = "pepRelated"
	FieldEmploymentStatus         = "employment.employmentStatus"
	FieldOccupation               = "employment.occupation"
	FieldEmployer                 = "employment.employer"
	FieldOrganizationType         = "employment.organizationType"
	FieldDesignation              = "employment.designation"
	FieldServiceNature            = "employment.serviceNature"
	FieldContractEndDate          = "employment.contractEndDate"
	FieldGrossIncome              = "employment.grossIncome"
)

// Address subfields, prefixed by AddressPath.
const (
	AddressCountry         = "country"
	AddressRegionPrimary   = "regionPrimary"
	AddressRegionSecondary = "regionSecondary"
	AddressStreet          = "street"
	AddressThram           = "thram"
	AddressHouse           = "house"
)

// Employment values with conditional subfields.
const (
	EmploymentEmployed    = "employed"
	ServiceNatureContract = "contract"
)

// AddressPath returns the path of an address subfield, e.g.
// "permanentAddress.country".
func AddressPath(b geo.Block, sub string) string {
	return string(b) + "Address." + sub
}

// Requirement decides whether a field must be filled for a record in a list.
type Requirement func(r *PartyRecord, list ListKind) bool

// Field declares one updatable scalar of a party record.
type Field struct {
	Path string
	Kind Kind
	// Catalog returns the catalog the value must be drawn from, or "" when
	// the field is not coded for this record.
	Catalog  func(r *PartyRecord) reference.CatalogName
	Required Requirement
	get      func(r *PartyRecord) string
	set      func(r *PartyRecord, v string)
}

// Get reads the field from r.
func (f Field) Get(r *PartyRecord) string { return f.get(r) }

// CatalogFor returns the catalog the field is coded against for r.
func (f Field) CatalogFor(r *PartyRecord) reference.CatalogName {
	if f.Catalog == nil {
		return ""
	}
	return f.Catalog(r)
}

// IsRequired reports whether the field must be filled.
func (f Field) IsRequired(r *PartyRecord, list ListKind) bool {
	return f.Required != nil && f.Required(r, list)
}

func always(*PartyRecord, ListKind) bool { return true }

func married(r *PartyRecord, _ ListKind) bool { return r.IsMarried }

func employed(r *PartyRecord, _ ListKind) bool {
	return r.Employment.Status == EmploymentEmployed
}

func onContract(r *PartyRecord, list ListKind) bool {
	return employed(r, list) && r.Employment.ServiceNature == ServiceNatureContract
}

func selfPEP(r *PartyRecord, _ ListKind) bool { return r.PEP.State() == pep.StateSelfYes }

func notSelfPEP(r *PartyRecord, _ ListKind) bool { return r.PEP.Person == pep.AnswerNo }

func catalog(name reference.CatalogName) func(*PartyRecord) reference.CatalogName {
	return func(*PartyRecord) reference.CatalogName { return name }
}

func text(path string, kind Kind, req Requirement, get func(*PartyRecord) *string) Field {
	return Field{
		Path:     path,
		Kind:     kind,
		Required: req,
		get:      func(r *PartyRecord) string { return *get(r) },
		set:      func(r *PartyRecord, v string) { *get(r) = v },
	}
}

func coded(path string, name reference.CatalogName, req Requirement, get func(*PartyRecord) *string) Field {
	f := text(path, KindSelect, req, get)
	f.Catalog = catalog(name)
	return f
}

func addressFields(b geo.Block) []Field {
	addr := func(r *PartyRecord) *AddressBlock { return r.Address(b) }
	structuredCatalog := func(name reference.CatalogName) func(*PartyRecord) reference.CatalogName {
		return func(r *PartyRecord) reference.CatalogName {
			if addr(r).Mode == geo.ModeStructured {
				return name
			}
			return ""
		}
	}
	primary := text(AddressPath(b, AddressRegionPrimary), KindText, always,
		func(r *PartyRecord) *string { return &addr(r).RegionPrimary })
	primary.Catalog = structuredCatalog(reference.CatalogDzongkhags)

	secondary := text(AddressPath(b, AddressRegionSecondary), KindText, always,
		func(r *PartyRecord) *string { return &addr(r).RegionSecondary })
	secondary.Catalog = structuredCatalog(reference.CatalogGewogs)

	return []Field{
		coded(AddressPath(b, AddressCountry), reference.CatalogCountries, always,
			func(r *PartyRecord) *string { return &addr(r).Country }),
		primary,
		secondary,
		text(AddressPath(b, AddressStreet), KindText, always,
			func(r *PartyRecord) *string { return &addr(r).Street }),
		text(AddressPath(b, AddressThram), KindText, nil,
			func(r *PartyRecord) *string { return &addr(r).Thram }),
		text(AddressPath(b, AddressHouse), KindText, nil,
			func(r *PartyRecord) *string { return &addr(r).House }),
	}
}

func answer(path string, req Requirement, get func(*PartyRecord) *pep.Answer) Field {
	return Field{
		Path:     path,
		Kind:     KindAnswer,
		Required: req,
		get:      func(r *PartyRecord) string { return string(*get(r)) },
		set:      func(r *PartyRecord, v string) { *get(r) = pep.Answer(v) },
	}
}

var recordFields = func() []Field {
	fields := []Field{
		coded(FieldIdentificationType, reference.CatalogIdentificationTypes, always,
			func(r *PartyRecord) *string { return &r.IdentificationType }),
		text(FieldIdentificationNumber, KindText, always, func(r *PartyRecord) *string { return &r.IdentificationNumber }),
		text(FieldIdentificationIssueDate, KindDate, nil, func(r *PartyRecord) *string { return &r.IdentificationIssueDate }),
		text(FieldIdentificationExpiryDate, KindDate, nil, func(r *PartyRecord) *string { return &r.IdentificationExpiryDate }),
		text(FieldSalutation, KindSelect, always, func(r *PartyRecord) *string { return &r.Salutation }),
		text(FieldName, KindText, always, func(r *PartyRecord) *string { return &r.Name }),
		coded(FieldNationality, reference.CatalogNationalities, always,
			func(r *PartyRecord) *string { return &r.Nationality }),
		text(FieldGender, KindSelect, always, func(r *PartyRecord) *string { return &r.Gender }),
		text(FieldDateOfBirth, KindDate, always, func(r *PartyRecord) *string { return &r.DateOfBirth }),
		coded(FieldMaritalStatus, reference.CatalogMaritalStatuses, always,
			func(r *PartyRecord) *string { return &r.MaritalStatus }),
		text(FieldSpouseName, KindText, married, func(r *PartyRecord) *string { return &r.Spouse.Name }),
		text(FieldSpouseIdentification, KindText, married, func(r *PartyRecord) *string { return &r.Spouse.IdentificationNumber }),
		text(FieldSpouseContact, KindDigits, nil, func(r *PartyRecord) *string { return &r.Spouse.ContactNumber }),
		text(FieldContactNumber, KindDigits, nil, func(r *PartyRecord) *string { return &r.ContactNumber }),
		text(FieldEmail, KindEmail, nil, func(r *PartyRecord) *string { return &r.Email }),
		text(FieldTPN, KindText, nil, func(r *PartyRecord) *string { return &r.TPN }),
	}
	fields = append(fields, addressFields(geo.BlockPermanent)...)
	fields = append(fields, addressFields(geo.BlockCurrent)...)
	fields = append(fields,
		coded(FieldBank, reference.CatalogBanks, always, func(r *PartyRecord) *string { return &r.Bank.Bank }),
		text(FieldAccountNumber, KindDigits, always, func(r *PartyRecord) *string { return &r.Bank.AccountNumber }),
		answer(FieldPEPPerson, always, func(r *PartyRecord) *pep.Answer { return &r.PEP.Person }),
		coded(FieldPEPCategory, reference.CatalogPEPCategories, selfPEP,
			func(r *PartyRecord) *string { return &r.PEP.Category }),
		text(FieldPEPSubCategory, KindSelect, selfPEP, func(r *PartyRecord) *string { return &r.PEP.SubCategory }),
		answer(FieldPEPRelated, notSelfPEP, func(r *PartyRecord) *pep.Answer { return &r.PEP.Related }),
		text(FieldEmploymentStatus, KindSelect, always, func(r *PartyRecord) *string { return &r.Employment.Status }),
		coded(FieldOccupation, reference.CatalogOccupations, employed,
			func(r *PartyRecord) *string { return &r.Employment.Occupation }),
		text(FieldEmployer, KindText, employed, func(r *PartyRecord) *string { return &r.Employment.Employer }),
		coded(FieldOrganizationType, reference.CatalogOrganizationTypes, employed,
			func(r *PartyRecord) *string { return &r.Employment.OrganizationType }),
		text(FieldDesignation, KindText, employed, func(r *PartyRecord) *string { return &r.Employment.Designation }),
		text(FieldServiceNature, KindSelect, employed, func(r *PartyRecord) *string { return &r.Employment.ServiceNature }),
		text(FieldContractEndDate, KindDate, onContract, func(r *PartyRecord) *string { return &r.Employment.ContractEndDate }),
		text(FieldGrossIncome, KindNumeric, employed, func(r *PartyRecord) *string { return &r.Employment.GrossIncome }),
	)
	return fields
}()

var fieldIndex = func() map[string]Field {
	idx := make(map[string]Field, len(recordFields))
	for _, f := range recordFields {
		idx[f.Path] = f
	}
	return idx
}()

// Fields returns every party record field in display order.
func Fields() []Field {
	return append([]Field(nil), recordFields...)
}

// LookupField returns the field declared at path.
func LookupField(path string) (Field, error) {
	f, ok := fieldIndex[path]
	if !ok {
		return Field{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown field %q", path))
	}
	return f, nil
}

// RowRequirement lists the related-person row fields required whenever the
// owning record declares a related PEP.
var RowRequirement = []pep.RowField{pep.RowRelationship, pep.RowIdentificationNo, pep.RowCategory, pep.RowSubCategory}

// Sections of the application outside the party lists.
const (
	SectionLoan      = "loan"
	SectionSecurity  = "security"
	SectionRepayment = "repayment"
	SectionBusiness  = "business"
)

// SectionField declares one scalar of a non-party section.
type SectionField struct {
	Section  string
	Name     string
	Kind     Kind
	Catalog  reference.CatalogName
	Required bool
	get      func(a *Application) *string
}

// Get reads the field from a. Business fields read empty for individuals.
func (f SectionField) Get(a *Application) string {
	if p := f.get(a); p != nil {
		return *p
	}
	return ""
}

func businessDetails(a *Application) *BusinessDetails {
	if a.Business == nil {
		return nil
	}
	return a.Business.details()
}

var sectionFields = []SectionField{
	{Section: SectionLoan, Name: "product", Kind: KindText, Required: true, get: func(a *Application) *string { return &a.Loan.Product }},
	{Section: SectionLoan, Name: "amount", Kind: KindNumeric, Required: true, get: func(a *Application) *string { return &a.Loan.Amount }},
	{Section: SectionLoan, Name: "tenureMonths", Kind: KindDigits, Required: true, get: func(a *Application) *string { return &a.Loan.TenureMonths }},
	{Section: SectionLoan, Name: "purpose", Kind: KindText, get: func(a *Application) *string { return &a.Loan.Purpose }},
	{Section: SectionSecurity, Name: "type", Kind: KindText, get: func(a *Application) *string { return &a.Security.Type }},
	{Section: SectionSecurity, Name: "description", Kind: KindText, get: func(a *Application) *string { return &a.Security.Description }},
	{Section: SectionSecurity, Name: "value", Kind: KindNumeric, get: func(a *Application) *string { return &a.Security.Value }},
	{Section: SectionSecurity, Name: "ownerName", Kind: KindText, get: func(a *Application) *string { return &a.Security.OwnerName }},
	{Section: SectionRepayment, Name: "mode", Kind: KindText, Required: true, get: func(a *Application) *string { return &a.Repayment.Mode }},
	{Section: SectionRepayment, Name: "frequency", Kind: KindText, get: func(a *Application) *string { return &a.Repayment.Frequency }},
	{Section: SectionRepayment, Name: "bank", Kind: KindSelect, Catalog: reference.CatalogBanks, get: func(a *Application) *string { return &a.Repayment.Bank }},
	{Section: SectionRepayment, Name: "accountNumber", Kind: KindDigits, get: func(a *Application) *string { return &a.Repayment.AccountNumber }},
	{Section: SectionBusiness, Name: "name", Kind: KindText, Required: true, get: func(a *Application) *string {
		if d := businessDetails(a); d != nil {
			return &d.Name
		}
		return nil
	}},
	{Section: SectionBusiness, Name: "licenseNumber", Kind: KindText, Required: true, get: func(a *Application) *string {
		if d := businessDetails(a); d != nil {
			return &d.LicenseNumber
		}
		return nil
	}},
	{Section: SectionBusiness, Name: "tpn", Kind: KindText, get: func(a *Application) *string {
		if d := businessDetails(a); d != nil {
			return &d.TPN
		}
		return nil
	}},
}

// SectionFields returns the fields of section in display order.
func SectionFields(section string) []SectionField {
	var out []SectionField
	for _, f := range sectionFields {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}

// Sections lists the non-party sections.
func Sections() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, f := range sectionFields {
		if _, ok := seen[f.Section]; !ok {
			seen[f.Section] = struct{}{}
			out = append(out, f.Section)
		}
	}
	sort.Strings(out)
	return out
}

func lookupSectionField(section, name string) (SectionField, error) {
	for _, f := range sectionFields {
		if f.Section == section && f.Name == name {
			return f, nil
		}
	}
	return SectionField{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown field %s.%s", section, name))
}
