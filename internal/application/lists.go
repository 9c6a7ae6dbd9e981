package application

import (
	"encoding/json"
	"fmt"

	dErrors "loanintake/pkg/domain-errors"
)

// ListKind names a list of party records.
type ListKind string

const (
	ListPrimary      ListKind = "primary"
	ListCoBorrowers  ListKind = "coBorrowers"
	ListGuarantors   ListKind = "guarantors"
	ListOwner        ListKind = "owner"
	ListPartners     ListKind = "partners"
	ListShareholders ListKind = "shareholders"
	ListBoardMembers ListKind = "boardMembers"
)

// Policy bounds a list. Max 0 means unbounded.
type Policy struct {
	Min     int
	Max     int
	Initial int
	// AddressProofAlways requires address proof documents even in
	// structured mode.
	AddressProofAlways bool
}

var policies = map[ListKind]Policy{
	ListPrimary:      {Min: 1, Max: 1, Initial: 1},
	ListCoBorrowers:  {Min: 1, Initial: 1},
	ListGuarantors:   {Min: 1, Initial: 1, AddressProofAlways: true},
	ListOwner:        {Min: 1, Max: 1, Initial: 1},
	ListPartners:     {Min: 1, Initial: 1},
	ListShareholders: {Min: 1, Initial: 1},
	ListBoardMembers: {},
}

// PolicyFor returns the policy of kind.
func PolicyFor(kind ListKind) Policy {
	return policies[kind]
}

// ParseListKind validates a list name.
func ParseListKind(s string) (ListKind, error) {
	kind := ListKind(s)
	if _, ok := policies[kind]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown list %q", s))
	}
	return kind, nil
}

func initialRecords(kind ListKind) []*PartyRecord {
	n := PolicyFor(kind).Initial
	out := make([]*PartyRecord, 0, n)
	for range n {
		out = append(out, NewPartyRecord())
	}
	return out
}

// BusinessType is the tag of the business profile variant.
type BusinessType string

const (
	BusinessIndividual         BusinessType = "individual"
	BusinessSoleProprietorship BusinessType = "sole_proprietorship"
	BusinessPartnership        BusinessType = "partnership"
	BusinessCompany            BusinessType = "company"
)

func ParseBusinessType(s string) (BusinessType, error) {
	switch t := BusinessType(s); t {
	case BusinessIndividual, BusinessSoleProprietorship, BusinessPartnership, BusinessCompany:
		return t, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown business type %q", s))
}

// BusinessDetails are the registration fields of a non-individual borrower.
type BusinessDetails struct {
	Name          string `json:"name"`
	LicenseNumber string `json:"licenseNumber"`
	TPN           string `json:"tpn"`
}

// Business is the closed set of borrower profiles. Each variant carries the
// party lists it needs and nothing else.
type Business interface {
	Type() BusinessType
	Lists() []ListKind
	records(kind ListKind) ([]*PartyRecord, bool)
	setRecords(kind ListKind, records []*PartyRecord)
	details() *BusinessDetails
	clone() Business
}

type Individual struct{}

type SoleProprietorship struct {
	Details BusinessDetails
	Owner   *PartyRecord
}

type Partnership struct {
	Details  BusinessDetails
	Partners []*PartyRecord
}

type Company struct {
	Details      BusinessDetails
	Shareholders []*PartyRecord
	BoardMembers []*PartyRecord
}

// NewBusiness builds a variant with its lists initialized per policy.
func NewBusiness(t BusinessType) Business {
	switch t {
	case BusinessSoleProprietorship:
		return &SoleProprietorship{Owner: NewPartyRecord()}
	case BusinessPartnership:
		return &Partnership{Partners: initialRecords(ListPartners)}
	case BusinessCompany:
		return &Company{
			Shareholders: initialRecords(ListShareholders),
			BoardMembers: initialRecords(ListBoardMembers),
		}
	default:
		return Individual{}
	}
}

func (Individual) Type() BusinessType                      { return BusinessIndividual }
func (Individual) Lists() []ListKind                       { return nil }
func (Individual) records(ListKind) ([]*PartyRecord, bool) { return nil, false }
func (Individual) setRecords(ListKind, []*PartyRecord)     {}
func (Individual) details() *BusinessDetails               { return nil }
func (Individual) clone() Business                         { return Individual{} }

func (b *SoleProprietorship) Type() BusinessType { return BusinessSoleProprietorship }
func (b *SoleProprietorship) Lists() []ListKind  { return []ListKind{ListOwner} }
func (b *SoleProprietorship) records(kind ListKind) ([]*PartyRecord, bool) {
	if kind != ListOwner {
		return nil, false
	}
	return []*PartyRecord{b.Owner}, true
}
func (b *SoleProprietorship) setRecords(kind ListKind, records []*PartyRecord) {
	if kind == ListOwner && len(records) == 1 {
		b.Owner = records[0]
	}
}
func (b *SoleProprietorship) details() *BusinessDetails { return &b.Details }
func (b *SoleProprietorship) clone() Business {
	c := *b
	c.Owner = b.Owner.Clone()
	return &c
}

func (b *Partnership) Type() BusinessType { return BusinessPartnership }
func (b *Partnership) Lists() []ListKind  { return []ListKind{ListPartners} }
func (b *Partnership) records(kind ListKind) ([]*PartyRecord, bool) {
	if kind != ListPartners {
		return nil, false
	}
	return b.Partners, true
}
func (b *Partnership) setRecords(kind ListKind, records []*PartyRecord) {
	if kind == ListPartners {
		b.Partners = records
	}
}
func (b *Partnership) details() *BusinessDetails { return &b.Details }
func (b *Partnership) clone() Business {
	c := *b
	c.Partners = cloneRecords(b.Partners)
	return &c
}

func (b *Company) Type() BusinessType { return BusinessCompany }
func (b *Company) Lists() []ListKind  { return []ListKind{ListShareholders, ListBoardMembers} }
func (b *Company) records(kind ListKind) ([]*PartyRecord, bool) {
	switch kind {
	case ListShareholders:
		return b.Shareholders, true
	case ListBoardMembers:
		return b.BoardMembers, true
	}
	return nil, false
}
func (b *Company) setRecords(kind ListKind, records []*PartyRecord) {
	switch kind {
	case ListShareholders:
		b.Shareholders = records
	case ListBoardMembers:
		b.BoardMembers = records
	}
}
func (b *Company) details() *BusinessDetails { return &b.Details }
func (b *Company) clone() Business {
	c := *b
	c.Shareholders = cloneRecords(b.Shareholders)
	c.BoardMembers = cloneRecords(b.BoardMembers)
	return &c
}

// Records returns the records of kind and whether the application has that
// list at all.
func (a *Application) Records(kind ListKind) ([]*PartyRecord, bool) {
	switch kind {
	case ListPrimary:
		return []*PartyRecord{a.Primary}, true
	case ListCoBorrowers:
		return a.CoBorrowers, true
	case ListGuarantors:
		return a.Guarantors, true
	}
	if a.Business == nil {
		return nil, false
	}
	return a.Business.records(kind)
}

func (a *Application) setRecords(kind ListKind, records []*PartyRecord) {
	switch kind {
	case ListPrimary:
		if len(records) == 1 {
			a.Primary = records[0]
		}
	case ListCoBorrowers:
		a.CoBorrowers = records
	case ListGuarantors:
		a.Guarantors = records
	default:
		a.Business.setRecords(kind, records)
	}
}

// Lists returns every list the application currently has, in display order.
func (a *Application) Lists() []ListKind {
	kinds := []ListKind{ListPrimary, ListCoBorrowers, ListGuarantors}
	if a.Business != nil {
		kinds = append(kinds, a.Business.Lists()...)
	}
	return kinds
}

type businessJSON struct {
	Type         BusinessType     `json:"type"`
	Details      *BusinessDetails `json:"details,omitempty"`
	Owner        *PartyRecord     `json:"owner,omitempty"`
	Partners     []*PartyRecord   `json:"partners,omitempty"`
	Shareholders []*PartyRecord   `json:"shareholders,omitempty"`
	BoardMembers []*PartyRecord   `json:"boardMembers,omitempty"`
}

// MarshalJSON renders the business variant under "business" with its tag.
func (a *Application) MarshalJSON() ([]byte, error) {
	type plain Application
	out := struct {
		*plain
		Business businessJSON `json:"business"`
	}{plain: (*plain)(a)}

	b := a.Business
	if b == nil {
		b = Individual{}
	}
	out.Business.Type = b.Type()
	out.Business.Details = b.details()
	switch v := b.(type) {
	case *SoleProprietorship:
		out.Business.Owner = v.Owner
	case *Partnership:
		out.Business.Partners = v.Partners
	case *Company:
		out.Business.Shareholders = v.Shareholders
		out.Business.BoardMembers = v.BoardMembers
	}
	return json.Marshal(out)
}
