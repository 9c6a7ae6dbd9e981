package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"loanintake/internal/application"
	"loanintake/internal/files"
	"loanintake/internal/geo"
	"loanintake/internal/pep"
	"loanintake/internal/reference"
	dErrors "loanintake/pkg/domain-errors"
	"loanintake/pkg/requestcontext"
)

var today = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

type EngineSuite struct {
	suite.Suite
	ctx      context.Context
	engine   *Engine
	catalogs reference.Catalogs
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), today)
	s.engine = New()
	s.catalogs = reference.Catalogs{}
	for _, name := range reference.StartupCatalogs {
		s.catalogs[name] = reference.Defaults(name)
	}
}

func validRecord() *application.PartyRecord {
	rec := application.NewPartyRecord()
	rec.IdentificationType = "cid"
	rec.IdentificationNumber = "11704000123"
	rec.IdentificationIssueDate = "2020-01-15"
	rec.IdentificationExpiryDate = "2030-01-15"
	rec.Salutation = "Mr"
	rec.Name = "Karma Dorji"
	rec.Nationality = "BTN"
	rec.Gender = "male"
	rec.DateOfBirth = "1990-05-01"
	rec.MaritalStatus = "S"
	rec.ContactNumber = "17123456"
	rec.Email = "karma@example.bt"
	for _, block := range []geo.Block{geo.BlockPermanent, geo.BlockCurrent} {
		addr := rec.Address(block)
		addr.Country = "BT"
		addr.RegionPrimary = "THI"
		addr.RegionSecondary = "KAW"
		addr.Street = "Changzamtog"
		addr.Mode = geo.ModeStructured
	}
	rec.Bank = application.BankDetails{Bank: "BOBL", AccountNumber: "200112233"}
	rec.PEP.SetPerson(pep.AnswerNo)
	rec.PEP.SetRelated(pep.AnswerNo)
	rec.Employment.Status = "unemployed"
	return rec
}

func proof() *files.Ref {
	return &files.Ref{Name: "proof.pdf", ContentType: "application/pdf", Size: 10}
}

func validApplication() *application.Application {
	guarantor := validRecord()
	guarantor.Permanent.ProofDocument = proof()
	guarantor.Current.ProofDocument = proof()
	return &application.Application{
		Loan:        application.LoanTerms{Product: "housing", Amount: "1500000.50", TenureMonths: "120"},
		Repayment:   application.Repayment{Mode: "salary_deduction", Bank: "BOBL"},
		Primary:     validRecord(),
		CoBorrowers: []*application.PartyRecord{validRecord()},
		Guarantors:  []*application.PartyRecord{guarantor},
		Business:    application.NewBusiness(application.BusinessIndividual),
	}
}

func (s *EngineSuite) check(rec *application.PartyRecord) map[string]string {
	return s.engine.ValidateRecord(s.ctx, rec, application.ListPrimary, s.catalogs)
}

// =============================================================================
// Record rules
// =============================================================================

func (s *EngineSuite) TestValidRecord() {
	s.Empty(s.check(validRecord()))
}

func (s *EngineSuite) TestRequiredCore() {
	errs := s.check(application.NewPartyRecord())

	for _, path := range []string{
		application.FieldName,
		application.FieldIdentificationType,
		application.FieldIdentificationNumber,
		application.FieldSalutation,
		application.FieldNationality,
		application.FieldGender,
		application.FieldDateOfBirth,
		application.FieldMaritalStatus,
		application.FieldPEPPerson,
	} {
		s.Equal(MsgRequired, errs[path], path)
	}
	s.NotContains(errs, application.FieldSpouseName)
	s.NotContains(errs, application.FieldPEPCategory)
}

func (s *EngineSuite) TestSpouseWhenMarried() {
	rec := validRecord()
	rec.MaritalStatus = "M"
	rec.IsMarried = true

	errs := s.check(rec)

	s.Equal(MsgRequired, errs[application.FieldSpouseName])
	s.Equal(MsgRequired, errs[application.FieldSpouseIdentification])
}

func (s *EngineSuite) TestAddressProof() {
	s.Run("freeform address needs free text and a proof document", func() {
		rec := validRecord()
		rec.Current = application.AddressBlock{Country: "IN", Mode: geo.ModeFreeform}

		errs := s.check(rec)

		s.Equal(MsgRequired, errs[application.AddressPath(geo.BlockCurrent, application.AddressRegionPrimary)])
		s.Equal(MsgRequired, errs[application.AddressPath(geo.BlockCurrent, application.AddressRegionSecondary)])
		s.Equal(MsgRequired, errs[application.AddressPath(geo.BlockCurrent, application.AddressStreet)])
		s.Equal(MsgRequired, errs[string(files.SlotCurrentAddressProof)])
		s.NotContains(errs, string(files.SlotPermanentAddressProof))
	})

	s.Run("guarantors need proof in structured mode too", func() {
		errs := s.engine.ValidateRecord(s.ctx, validRecord(), application.ListGuarantors, s.catalogs)
		s.Equal(MsgRequired, errs[string(files.SlotPermanentAddressProof)])
		s.Equal(MsgRequired, errs[string(files.SlotCurrentAddressProof)])
	})

	s.Run("freeform region text is not checked against dzongkhags", func() {
		rec := validRecord()
		rec.Current = application.AddressBlock{
			Country: "IN", RegionPrimary: "West Bengal", RegionSecondary: "Darjeeling", Street: "Mall Road",
			Mode: geo.ModeFreeform, ProofDocument: proof(),
		}
		s.Empty(s.check(rec))
	})
}

func (s *EngineSuite) TestEmployment() {
	rec := validRecord()
	rec.Employment = application.Employment{Status: application.EmploymentEmployed, ServiceNature: application.ServiceNatureContract, GrossIncome: "fifty"}

	errs := s.check(rec)

	s.Equal(MsgRequired, errs[application.FieldOccupation])
	s.Equal(MsgRequired, errs[application.FieldEmployer])
	s.Equal(MsgRequired, errs[application.FieldContractEndDate])
	s.Equal(MsgNumeric, errs[application.FieldGrossIncome])
}

func (s *EngineSuite) TestFormats() {
	rec := validRecord()
	rec.ContactNumber = "17-123-456"
	rec.Email = "karma.example.bt"
	rec.Bank.AccountNumber = "2001 1223"
	rec.Nationality = "Martian"

	errs := s.check(rec)

	s.Equal(MsgDigits, errs[application.FieldContactNumber])
	s.Equal(MsgEmail, errs[application.FieldEmail])
	s.Equal(MsgDigits, errs[application.FieldAccountNumber])
	s.Equal(MsgUnknownOption, errs[application.FieldNationality])
}

func (s *EngineSuite) TestDateRules() {
	tests := []struct {
		name  string
		edit  func(r *application.PartyRecord)
		field string
		want  string
	}{
		{"issue date after today", func(r *application.PartyRecord) { r.IdentificationIssueDate = "2026-10-15" }, application.FieldIdentificationIssueDate, MsgIssueFuture},
		{"expiry date before today", func(r *application.PartyRecord) {
			r.IdentificationIssueDate = "2010-01-01"
			r.IdentificationExpiryDate = "2026-10-13"
		}, application.FieldIdentificationExpiryDate, MsgExpired},
		{"issue equal to expiry", func(r *application.PartyRecord) {
			r.IdentificationIssueDate = "2026-10-14"
			r.IdentificationExpiryDate = "2026-10-14"
		}, application.FieldIdentificationExpiryDate, MsgExpiryOrder},
		{"younger than fifteen", func(r *application.PartyRecord) { r.DateOfBirth = "2011-10-15" }, application.FieldDateOfBirth, "must be at least 15 years old"},
		{"malformed date", func(r *application.PartyRecord) { r.DateOfBirth = "01/05/1990" }, application.FieldDateOfBirth, MsgDate},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := validRecord()
			tt.edit(rec)
			s.Equal(tt.want, s.check(rec)[tt.field])
		})
	}

	s.Run("fifteenth birthday today is old enough", func() {
		rec := validRecord()
		rec.DateOfBirth = "2011-10-14"
		s.NotContains(s.check(rec), application.FieldDateOfBirth)
	})

	s.Run("expiry today is still valid", func() {
		rec := validRecord()
		rec.IdentificationExpiryDate = "2026-10-14"
		s.NotContains(s.check(rec), application.FieldIdentificationExpiryDate)
	})
}

// =============================================================================
// PEP rules
// =============================================================================

func (s *EngineSuite) TestSelfPEP() {
	rec := validRecord()
	rec.PEP.SetPerson(pep.AnswerYes)

	errs := s.check(rec)

	s.Equal(MsgRequired, errs[application.FieldPEPCategory])
	s.Equal(MsgRequired, errs[application.FieldPEPSubCategory])
	s.Equal(MsgRequired, errs[string(files.SlotPEPIdentificationProof)])
	s.NotContains(errs, application.FieldPEPRelated)
}

func (s *EngineSuite) TestRelatedPEPRows() {
	rec := validRecord()
	rec.PEP.SetRelated(pep.AnswerYes)
	_, err := rec.PEP.AddRow()
	s.Require().NoError(err)
	rec.PEP.RelatedPeps[0] = pep.RelatedEntry{
		ID: rec.PEP.RelatedPeps[0].ID, Relationship: "Father", IdentificationNo: "10101000001",
		Category: "domestic", SubCategory: "MIN",
	}
	rec.PEP.RelatedPeps[1].Category = "celebrity"

	errs := s.check(rec)

	s.NotContains(errs, "relatedPeps[0].category")
	s.Equal(MsgRequired, errs["relatedPeps[1].relationship"])
	s.Equal(MsgUnknownOption, errs["relatedPeps[1].category"])
	s.Equal(MsgRequired, errs["relatedPeps[1].subCategory"])
}

// =============================================================================
// Application rules
// =============================================================================

func (s *EngineSuite) TestValidApplication() {
	res := s.engine.Validate(s.ctx, validApplication(), s.catalogs)
	s.True(res.Valid(), res.Paths())
	s.NoError(res.Err())
}

func (s *EngineSuite) TestPEPCategoryBlocksSubmission() {
	app := validApplication()
	app.Primary.PEP.SetPerson(pep.AnswerYes)
	app.Primary.PEP.SubCategory = "MIN"
	app.Primary.PEP.IdentificationProof = proof()

	res := s.engine.Validate(s.ctx, app, s.catalogs)

	s.Equal([]string{"primary.pepCategory"}, res.Paths())
	err := res.Err()
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	var failure *Failure
	s.Require().True(errors.As(err, &failure))
	s.Equal(MsgRequired, failure.Errors["primary.pepCategory"])
	s.Equal(map[string]string{application.FieldPEPCategory: MsgRequired}, res.ByRecord[app.Primary.ID])
}

func (s *EngineSuite) TestPathsCarryPosition() {
	app := validApplication()
	second := validRecord()
	second.Name = ""
	app.CoBorrowers = append(app.CoBorrowers, second)
	app.Loan.Amount = "a lot"

	res := s.engine.Validate(s.ctx, app, s.catalogs)

	s.Equal([]string{"coBorrowers[1].name", "loan.amount"}, res.Paths())
	s.Equal(MsgNumeric, res.Errors["loan.amount"])
	s.Contains(res.ByRecord, second.ID)
	s.NotContains(res.ByRecord, app.CoBorrowers[0].ID)
}

func (s *EngineSuite) TestBusinessSection() {
	app := validApplication()
	s.NotContains(s.engine.Validate(s.ctx, app, s.catalogs).Errors, "business.name")

	app.Business = application.NewBusiness(application.BusinessSoleProprietorship)
	owner := validRecord()
	owner.Name = ""
	app.Business.(*application.SoleProprietorship).Owner = owner

	res := s.engine.Validate(s.ctx, app, s.catalogs)

	s.Equal(MsgRequired, res.Errors["business.name"])
	s.Equal(MsgRequired, res.Errors["business.licenseNumber"])
	s.Equal(MsgRequired, res.Errors["owner.name"])
}
