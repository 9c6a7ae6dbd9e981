package application

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanintake/internal/geo"
	"loanintake/internal/pep"
	"loanintake/internal/reference"
	dErrors "loanintake/pkg/domain-errors"
)

func TestIsMarried(t *testing.T) {
	statuses := reference.Defaults(reference.CatalogMaritalStatuses)
	tests := []struct {
		value string
		want  bool
	}{
		{"M", true},
		{"Married", true},
		{"S", false},
		{"Single/Unmarried", false},
		{"unmarried", false},
		{"W", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMarried(tt.value, statuses))
		})
	}
}

func TestFieldRequirements(t *testing.T) {
	rec := NewPartyRecord()
	spouse, err := LookupField(FieldSpouseName)
	require.NoError(t, err)
	assert.False(t, spouse.IsRequired(rec, ListPrimary))
	rec.IsMarried = true
	assert.True(t, spouse.IsRequired(rec, ListPrimary))

	category, _ := LookupField(FieldPEPCategory)
	related, _ := LookupField(FieldPEPRelated)
	rec.PEP.SetPerson(pep.AnswerYes)
	assert.True(t, category.IsRequired(rec, ListPrimary))
	assert.False(t, related.IsRequired(rec, ListPrimary))
	rec.PEP.SetPerson(pep.AnswerNo)
	assert.False(t, category.IsRequired(rec, ListPrimary))
	assert.True(t, related.IsRequired(rec, ListPrimary))
}

func TestRegionCatalogFollowsMode(t *testing.T) {
	rec := NewPartyRecord()
	region, err := LookupField(AddressPath(geo.BlockPermanent, AddressRegionPrimary))
	require.NoError(t, err)
	assert.Empty(t, region.CatalogFor(rec))

	rec.Permanent.Mode = geo.ModeStructured
	assert.Equal(t, reference.CatalogDzongkhags, region.CatalogFor(rec))
}

func TestLookupField_Unknown(t *testing.T) {
	_, err := LookupField("nickname")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestSectionFields(t *testing.T) {
	assert.Equal(t, []string{SectionBusiness, SectionLoan, SectionRepayment, SectionSecurity}, Sections())

	app := &Application{Business: NewBusiness(BusinessIndividual)}
	name, err := lookupSectionField(SectionBusiness, "name")
	require.NoError(t, err)
	assert.Empty(t, name.Get(app))

	app.Business = NewBusiness(BusinessSoleProprietorship)
	*name.get(app) = "Yangchen Store"
	assert.Equal(t, "Yangchen Store", name.Get(app))
}

func TestApplicationJSON_Business(t *testing.T) {
	app := &Application{Primary: NewPartyRecord(), Business: NewBusiness(BusinessPartnership)}

	raw, err := json.Marshal(app)
	require.NoError(t, err)

	var decoded struct {
		Business struct {
			Type     BusinessType      `json:"type"`
			Partners []json.RawMessage `json:"partners"`
		} `json:"business"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, BusinessPartnership, decoded.Business.Type)
	assert.Len(t, decoded.Business.Partners, 1)
}

func TestClone_Independent(t *testing.T) {
	app := &Application{Primary: NewPartyRecord(), Business: NewBusiness(BusinessCompany)}
	app.Primary.Errors = map[string]string{"name": "required"}

	cp := app.Clone()
	cp.Primary.Name = "changed"
	cp.Primary.Errors["name"] = "changed"

	assert.Empty(t, app.Primary.Name)
	assert.Equal(t, "required", app.Primary.Errors["name"])
}
