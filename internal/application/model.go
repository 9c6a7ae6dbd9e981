// Package application owns the in-progress loan application: the primary
// party, the repeatable party lists, the business profile and the loan
// sections, and applies every field change together with its cascades.
package application

import (
	"loanintake/internal/files"
	"loanintake/internal/geo"
	"loanintake/internal/pep"
	"loanintake/pkg/domain"
)

// AddressBlock is one address of a party. In structured mode the regions are
// dzongkhag and gewog codes and Street is the village; in freeform mode all
// three are free text and a proof document is required.
type AddressBlock struct {
	Country         string     `json:"country"`
	RegionPrimary   string     `json:"regionPrimary"`
	RegionSecondary string     `json:"regionSecondary"`
	Street          string     `json:"street"`
	Thram           string     `json:"thram,omitempty"`
	House           string     `json:"house,omitempty"`
	ProofDocument   *files.Ref `json:"proofDocument,omitempty"`
	Mode            geo.Mode   `json:"mode"`
}

// Spouse is required only while the party is married.
type Spouse struct {
	Name                 string `json:"name"`
	IdentificationNumber string `json:"identificationNumber"`
	ContactNumber        string `json:"contactNumber"`
}

type BankDetails struct {
	Bank          string `json:"bank"`
	AccountNumber string `json:"accountNumber"`
}

type Employment struct {
	Status           string `json:"employmentStatus"`
	Occupation       string `json:"occupation"`
	Employer         string `json:"employer"`
	OrganizationType string `json:"organizationType"`
	Designation      string `json:"designation"`
	ServiceNature    string `json:"serviceNature"`
	ContractEndDate  string `json:"contractEndDate"`
	GrossIncome      string `json:"grossIncome"`
}

// PartyRecord is the common shape of every party on the application. ID is
// assigned at creation and keys every side-map owned by the record.
type PartyRecord struct {
	ID domain.RecordID `json:"id"`

	IdentificationType       string `json:"identificationType"`
	IdentificationNumber     string `json:"identificationNumber"`
	IdentificationIssueDate  string `json:"identificationIssueDate"`
	IdentificationExpiryDate string `json:"identificationExpiryDate"`

	Salutation    string `json:"salutation"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
	Gender        string `json:"gender"`
	DateOfBirth   string `json:"dateOfBirth"`
	MaritalStatus string `json:"maritalStatus"`
	IsMarried     bool   `json:"isMarried"`
	Spouse        Spouse `json:"spouse"`

	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
	TPN           string `json:"tpn"`

	Permanent AddressBlock `json:"permanentAddress"`
	Current   AddressBlock `json:"currentAddress"`

	Bank       BankDetails     `json:"bank"`
	PEP        pep.Declaration `json:"pep"`
	Employment Employment      `json:"employment"`

	PassportPhoto *files.Ref `json:"passportPhoto,omitempty"`

	Errors map[string]string `json:"errors,omitempty"`
}

// NewPartyRecord returns an empty record with a fresh identity.
func NewPartyRecord() *PartyRecord {
	return &PartyRecord{
		ID:        domain.NewRecordID(),
		Permanent: AddressBlock{Mode: geo.ModeFreeform},
		Current:   AddressBlock{Mode: geo.ModeFreeform},
	}
}

// Address returns the block named b.
func (r *PartyRecord) Address(b geo.Block) *AddressBlock {
	if b == geo.BlockCurrent {
		return &r.Current
	}
	return &r.Permanent
}

// File returns the storage of a document slot. Every party uses the same
// flat slot names.
func (r *PartyRecord) File(slot files.Slot) **files.Ref {
	switch slot {
	case files.SlotPassportPhoto:
		return &r.PassportPhoto
	case files.SlotPermanentAddressProof:
		return &r.Permanent.ProofDocument
	case files.SlotCurrentAddressProof:
		return &r.Current.ProofDocument
	case files.SlotPEPIdentificationProof:
		return &r.PEP.IdentificationProof
	}
	return nil
}

// Clone returns a deep copy safe to read without the application lock.
func (r *PartyRecord) Clone() *PartyRecord {
	c := *r
	c.PEP = r.PEP.Clone()
	if r.Errors != nil {
		c.Errors = make(map[string]string, len(r.Errors))
		for k, v := range r.Errors {
			c.Errors[k] = v
		}
	}
	return &c
}

type LoanTerms struct {
	Product      string `json:"product"`
	Amount       string `json:"amount"`
	TenureMonths string `json:"tenureMonths"`
	Purpose      string `json:"purpose"`
}

type Security struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Value       string `json:"value"`
	OwnerName   string `json:"ownerName"`
}

type Repayment struct {
	Mode          string `json:"mode"`
	Frequency     string `json:"frequency"`
	Bank          string `json:"bank"`
	AccountNumber string `json:"accountNumber"`
}

// Application is the aggregate edited by a Manager.
type Application struct {
	ID          domain.ApplicationID `json:"id"`
	Loan        LoanTerms            `json:"loan"`
	Security    Security             `json:"security"`
	Repayment   Repayment            `json:"repayment"`
	Primary     *PartyRecord         `json:"primary"`
	CoBorrowers []*PartyRecord       `json:"coBorrowers"`
	Guarantors  []*PartyRecord       `json:"guarantors"`
	Business    Business             `json:"-"`
}

// Clone returns a deep copy of the aggregate.
func (a *Application) Clone() *Application {
	c := *a
	c.Primary = a.Primary.Clone()
	c.CoBorrowers = cloneRecords(a.CoBorrowers)
	c.Guarantors = cloneRecords(a.Guarantors)
	if a.Business != nil {
		c.Business = a.Business.clone()
	}
	return &c
}

func cloneRecords(in []*PartyRecord) []*PartyRecord {
	if in == nil {
		return nil
	}
	out := make([]*PartyRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
