// Package submission assembles an accepted application into the multipart
// payload of the submission endpoint and sends it.
package submission

import (
	"fmt"
	"strconv"
	"strings"

	"loanintake/internal/application"
	"loanintake/internal/files"
	"loanintake/internal/pep"
)

// Payload sections.
const (
	SectionLoan       = "loan"
	SectionPrimary    = "primary"
	SectionCoBorrower = "coBorrower"
	SectionSecurity   = "security"
	SectionRepayment  = "repayment"
	SectionBusiness   = "business"
)

// FileSlots are the named file fields of the payload, all taken from the
// primary party.
var FileSlots = []files.Slot{files.SlotPassportPhoto, files.SlotCurrentAddressProof, files.SlotPermanentAddressProof}

// Field is one flattened scalar.
type Field struct {
	Key   string
	Value string
}

// File is one attached document.
type File struct {
	Field string
	Ref   files.Ref
}

// Payload is the flattened submission.
type Payload struct {
	Fields []Field
	Files  []File
}

// Value returns the value flattened under key.
func (p Payload) Value(key string) (string, bool) {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Key formats a payload key: Key("primary", "permanentAddress.country")
// gives "primary[permanentAddress][country]".
func Key(section, path string) string {
	return section + "[" + strings.ReplaceAll(path, ".", "][") + "]"
}

// Assemble flattens app. Empty scalars and file fields are left out of the
// scalar pairs; the primary party's documents fill the file slots.
func Assemble(app *application.Application) Payload {
	var p Payload
	p.sections(app, application.SectionLoan, SectionLoan)
	p.record(SectionPrimary, app.Primary)
	if len(app.CoBorrowers) > 0 {
		p.record(SectionCoBorrower, app.CoBorrowers[0])
	}
	p.sections(app, application.SectionSecurity, SectionSecurity)
	p.sections(app, application.SectionRepayment, SectionRepayment)
	if app.Business != nil && app.Business.Type() != application.BusinessIndividual {
		p.add(Key(SectionBusiness, "type"), string(app.Business.Type()))
		p.sections(app, application.SectionBusiness, SectionBusiness)
	}

	if app.Primary != nil {
		for _, slot := range FileSlots {
			if ref := *app.Primary.File(slot); ref != nil {
				p.Files = append(p.Files, File{Field: string(slot), Ref: *ref})
			}
		}
	}
	return p
}

func (p *Payload) add(key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		p.Fields = append(p.Fields, Field{Key: key, Value: value})
	}
}

func (p *Payload) sections(app *application.Application, section, prefix string) {
	for _, f := range application.SectionFields(section) {
		p.add(Key(prefix, f.Name), f.Get(app))
	}
}

func (p *Payload) record(section string, rec *application.PartyRecord) {
	if rec == nil {
		return
	}
	for _, f := range application.Fields() {
		p.add(Key(section, f.Path), f.Get(rec))
	}
	p.add(Key(section, "isMarried"), strconv.FormatBool(rec.IsMarried))
	for i, row := range rec.PEP.RelatedPeps {
		for _, field := range pep.RowFields {
			p.add(Key(section, fmt.Sprintf("relatedPeps.%d.%s", i, field)), row.Get(field))
		}
	}
}
