// Package pep models the politically exposed person disclosure of a party:
// whether the party is a PEP, and if not, whether they are related to one,
// with a repeatable list of related persons.
package pep

import (
	"fmt"
	"strings"

	"loanintake/internal/files"
	"loanintake/pkg/domain"
	dErrors "loanintake/pkg/domain-errors"
)

// Answer is a yes/no response. The zero value means unanswered.
type Answer string

const (
	AnswerUnset Answer = ""
	AnswerYes   Answer = "yes"
	AnswerNo    Answer = "no"
)

// ParseAnswer normalizes the accepted spellings of a yes/no answer.
func ParseAnswer(s string) (Answer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return AnswerUnset, nil
	case "yes", "y", "true":
		return AnswerYes, nil
	case "no", "n", "false":
		return AnswerNo, nil
	default:
		return AnswerUnset, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%q is not a yes/no answer", s))
	}
}

// State is the position of a declaration in the disclosure flow.
type State int

const (
	StateUnset State = iota
	StateSelfYes
	// StateSelfNo: not a PEP, related question not yet answered.
	StateSelfNo
	StateRelatedYes
	StateRelatedNo
)

func (s State) String() string {
	switch s {
	case StateSelfYes:
		return "self_yes"
	case StateSelfNo:
		return "self_no"
	case StateRelatedYes:
		return "related_yes"
	case StateRelatedNo:
		return "related_no"
	default:
		return "unset"
	}
}

// RelatedEntry is one person the party is related to.
type RelatedEntry struct {
	ID                  domain.RowID `json:"id"`
	Relationship        string       `json:"relationship"`
	IdentificationNo    string       `json:"identificationNo"`
	Category            string       `json:"category"`
	SubCategory         string       `json:"subCategory"`
	IdentificationProof *files.Ref   `json:"identificationProof,omitempty"`
}

// NewRelatedEntry returns an empty row with a fresh identity.
func NewRelatedEntry() RelatedEntry {
	return RelatedEntry{ID: domain.NewRowID()}
}

// Declaration is the PEP block of a party record.
type Declaration struct {
	Person              Answer         `json:"pepPerson"`
	Category            string         `json:"pepCategory"`
	SubCategory         string         `json:"pepSubCategory"`
	IdentificationProof *files.Ref     `json:"identificationProof,omitempty"`
	Related             Answer         `json:"pepRelated"`
	RelatedPeps         []RelatedEntry `json:"relatedPeps"`
}

// State derives the flow position from the answers.
func (d *Declaration) State() State {
	switch d.Person {
	case AnswerYes:
		return StateSelfYes
	case AnswerNo:
		switch d.Related {
		case AnswerYes:
			return StateRelatedYes
		case AnswerNo:
			return StateRelatedNo
		}
		return StateSelfNo
	}
	return StateUnset
}

// SetPerson answers the self-declaration. Answering anything but yes clears
// the category, sub-category and proof. Answering yes withdraws the related
// declaration, which is only asked of non-PEPs.
func (d *Declaration) SetPerson(a Answer) {
	d.Person = a
	if a != AnswerYes {
		d.Category = ""
		d.SubCategory = ""
		d.IdentificationProof = nil
		return
	}
	d.Related = AnswerUnset
	d.RelatedPeps = nil
}

// SetRelated answers the related declaration. Yes guarantees at least one
// row; anything else empties the list.
func (d *Declaration) SetRelated(a Answer) {
	d.Related = a
	if a != AnswerYes {
		d.RelatedPeps = []RelatedEntry{}
		return
	}
	if len(d.RelatedPeps) == 0 {
		d.RelatedPeps = []RelatedEntry{NewRelatedEntry()}
	}
}

// SetCategory changes the self-declared category. A different category
// invalidates the selected sub-category. It reports whether it changed.
func (d *Declaration) SetCategory(category string) bool {
	if d.Category == category {
		return false
	}
	d.Category = category
	d.SubCategory = ""
	return true
}

// MinRows is the least number of related rows the declaration may hold.
func (d *Declaration) MinRows() int {
	if d.Related == AnswerYes {
		return 1
	}
	return 0
}

// AddRow appends an empty related row.
func (d *Declaration) AddRow() (RelatedEntry, error) {
	if d.Related != AnswerYes {
		return RelatedEntry{}, dErrors.New(dErrors.CodeInvariantViolation, "related persons can only be added when related to a PEP")
	}
	row := NewRelatedEntry()
	d.RelatedPeps = append(d.RelatedPeps, row)
	return row, nil
}

// RemoveRow removes a related row. Removing the last row of a yes
// declaration is rejected and leaves the list untouched.
func (d *Declaration) RemoveRow(id domain.RowID) error {
	i := d.indexOf(id)
	if i < 0 {
		return dErrors.New(dErrors.CodeNotFound, "related person not found")
	}
	if len(d.RelatedPeps) <= d.MinRows() {
		return dErrors.New(dErrors.CodeInvariantViolation, "at least one related person is required")
	}
	d.RelatedPeps = append(d.RelatedPeps[:i], d.RelatedPeps[i+1:]...)
	return nil
}

// Row returns the row with id.
func (d *Declaration) Row(id domain.RowID) (*RelatedEntry, error) {
	i := d.indexOf(id)
	if i < 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "related person not found")
	}
	return &d.RelatedPeps[i], nil
}

func (d *Declaration) indexOf(id domain.RowID) int {
	for i := range d.RelatedPeps {
		if d.RelatedPeps[i].ID == id {
			return i
		}
	}
	return -1
}

// RowField names an editable field of a related row.
type RowField string

const (
	RowRelationship     RowField = "relationship"
	RowIdentificationNo RowField = "identificationNo"
	RowCategory         RowField = "category"
	RowSubCategory      RowField = "subCategory"
)

// RowFields lists the scalar fields of a related row in display order.
var RowFields = []RowField{RowRelationship, RowIdentificationNo, RowCategory, RowSubCategory}

// Set updates one field of the row. A changed category clears the
// sub-category; categoryChanged reports that so the caller can refetch.
func (e *RelatedEntry) Set(field RowField, value string) (categoryChanged bool, err error) {
	switch field {
	case RowRelationship:
		e.Relationship = value
	case RowIdentificationNo:
		e.IdentificationNo = value
	case RowCategory:
		if e.Category == value {
			return false, nil
		}
		e.Category = value
		e.SubCategory = ""
		return true, nil
	case RowSubCategory:
		e.SubCategory = value
	default:
		return false, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown related person field %q", field))
	}
	return false, nil
}

// Get returns one field of the row.
func (e *RelatedEntry) Get(field RowField) string {
	switch field {
	case RowRelationship:
		return e.Relationship
	case RowIdentificationNo:
		return e.IdentificationNo
	case RowCategory:
		return e.Category
	case RowSubCategory:
		return e.SubCategory
	}
	return ""
}

// Clone returns a deep copy.
func (d Declaration) Clone() Declaration {
	if d.RelatedPeps != nil {
		d.RelatedPeps = append([]RelatedEntry(nil), d.RelatedPeps...)
	}
	return d
}
