package application

import (
	"context"

	"loanintake/internal/geo"
	"loanintake/internal/identity"
	"loanintake/internal/pep"
	"loanintake/pkg/domain"
)

type pathValue struct {
	path  string
	value string
}

// mergeFields lists the mapped values in schema order so that countries are
// applied before regions and the PEP answers before their details. The
// identification type and number are never part of a merge.
func mergeFields(r identity.MappedRecord) []pathValue {
	byPath := map[string]string{
		FieldIdentificationIssueDate:  r.IdentificationIssue,
		FieldIdentificationExpiryDate: r.IdentificationExpiry,
		FieldSalutation:               r.Salutation,
		FieldName:                     r.Name,
		FieldNationality:              r.Nationality,
		FieldGender:                   r.Gender,
		FieldDateOfBirth:              r.DateOfBirth,
		FieldMaritalStatus:            r.MaritalStatus,
		FieldSpouseName:               r.SpouseName,
		FieldSpouseIdentification:     r.SpouseIdentification,
		FieldSpouseContact:            r.SpouseContact,
		FieldContactNumber:            r.ContactNumber,
		FieldEmail:                    r.Email,
		FieldTPN:                      r.TPN,
		FieldBank:                     r.Bank,
		FieldAccountNumber:            r.AccountNumber,
		FieldPEPPerson:                r.PEPPerson,
		FieldPEPCategory:              r.PEPCategory,
		FieldPEPSubCategory:           r.PEPSubCategory,
		FieldPEPRelated:               r.PEPRelated,
		FieldEmploymentStatus:         r.EmploymentStatus,
		FieldOccupation:               r.Occupation,
		FieldEmployer:                 r.Employer,
		FieldDesignation:              r.Designation,
		FieldGrossIncome:              r.GrossIncome,
	}
	for block, addr := range map[geo.Block]identity.Address{geo.BlockPermanent: r.Permanent, geo.BlockCurrent: r.Current} {
		byPath[AddressPath(block, AddressCountry)] = addr.Country
		byPath[AddressPath(block, AddressRegionPrimary)] = addr.RegionPrimary
		byPath[AddressPath(block, AddressRegionSecondary)] = addr.RegionSecondary
		byPath[AddressPath(block, AddressStreet)] = addr.Street
		byPath[AddressPath(block, AddressThram)] = addr.Thram
		byPath[AddressPath(block, AddressHouse)] = addr.House
	}

	out := make([]pathValue, 0, len(byPath))
	for _, f := range recordFields {
		if v := byPath[f.Path]; v != "" {
			out = append(out, pathValue{path: f.Path, value: v})
		}
	}
	return out
}

// LookupIdentity is the blur trigger of the identification number. It looks
// up the record's identification type and number and returns the held
// result. Without both values nothing is looked up.
func (m *Manager) LookupIdentity(ctx context.Context, list ListKind, id domain.RecordID) (identity.Result, error) {
	m.mu.Lock()
	rec, _, err := m.find(list, id)
	if err != nil {
		m.mu.Unlock()
		return identity.Result{}, err
	}
	ticket, ok := m.identity.Trigger(rec.ID, rec.IdentificationType, rec.IdentificationNumber)
	m.mu.Unlock()
	if ok {
		m.identity.Run(ctx, ticket)
	}
	return m.identity.Result(id), nil
}

// IdentityResult returns the held lookup result of a record.
func (m *Manager) IdentityResult(list ListKind, id domain.RecordID) (identity.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, _, err := m.find(list, id); err != nil {
		return identity.Result{}, err
	}
	return m.identity.Result(id), nil
}

// pepAnswerFields are left to the user once they have listed related persons.
var pepAnswerFields = map[string]bool{
	FieldPEPPerson:      true,
	FieldPEPCategory:    true,
	FieldPEPSubCategory: true,
	FieldPEPRelated:     true,
}

// ProceedIdentity merges the found record into the visible record. The
// user's identification type and number are kept. A record that already lists
// related persons keeps its whole PEP declaration. Merged values run through
// the same cascades as edits.
func (m *Manager) ProceedIdentity(ctx context.Context, list ListKind, id domain.RecordID) error {
	m.mu.Lock()
	rec, _, err := m.find(list, id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	mapped, err := m.identity.Accept(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	rows := rec.PEP.RelatedPeps
	var effects []effect
	for _, pv := range mergeFields(mapped) {
		if len(rows) > 0 && pepAnswerFields[pv.path] {
			continue
		}
		field, _ := LookupField(pv.path)
		e, err := m.apply(rec, field, pv.value)
		if err != nil {
			m.logger.WarnContext(ctx, "identity field not merged", "record_id", id.String(), "field", pv.path, "error", err)
			continue
		}
		effects = append(effects, e...)
	}
	if rec.PEP.Related == pep.AnswerYes {
		if len(rows) > 0 {
			rec.PEP.RelatedPeps = rows
		}
		if len(rec.PEP.RelatedPeps) == 0 {
			rec.PEP.RelatedPeps = []pep.RelatedEntry{pep.NewRelatedEntry()}
		}
	}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "identity record merged", "record_id", id.String(), "list", list)
	m.run(ctx, effects)
	return nil
}

// SkipIdentity declines the lookup result without touching the record.
func (m *Manager) SkipIdentity(list ListKind, id domain.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, _, err := m.find(list, id); err != nil {
		return err
	}
	m.identity.Skip(id)
	return nil
}
