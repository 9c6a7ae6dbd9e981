// Package validation evaluates a frozen application snapshot against the
// field schema and the date, format, document and PEP rules.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"loanintake/internal/application"
	"loanintake/internal/files"
	"loanintake/internal/geo"
	"loanintake/internal/pep"
	"loanintake/internal/platform/config"
	"loanintake/internal/platform/logger"
	"loanintake/internal/reference"
	"loanintake/pkg/domain"
	dErrors "loanintake/pkg/domain-errors"
	"loanintake/pkg/requestcontext"
)

// Messages surfaced next to a field.
const (
	MsgRequired      = "is required"
	MsgDigits        = "must contain digits only"
	MsgNumeric       = "must be a number"
	MsgEmail         = "must be a valid email address"
	MsgDate          = "must be a date (YYYY-MM-DD)"
	MsgUnknownOption = "is not a valid option"
	MsgIssueFuture   = "must not be in the future"
	MsgExpired       = "has expired"
	MsgExpiryOrder   = "must be after the issue date"
	MsgRelatedRows   = "at least one related person is required"
)

var formatTags = map[application.Kind]struct {
	tag     string
	message string
}{
	application.KindDigits:  {"number", MsgDigits},
	application.KindNumeric: {"numeric", MsgNumeric},
	application.KindEmail:   {"email", MsgEmail},
}

// Engine validates applications. It holds no per-application state.
type Engine struct {
	validate   *validator.Validate
	minimumAge int
	logger     *slog.Logger
}

type Option func(*Engine)

func WithMinimumAge(years int) Option {
	return func(e *Engine) {
		if years > 0 {
			e.minimumAge = years
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		minimumAge: config.DefaultMinimumAge,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of validating an application.
type Result struct {
	// Errors maps an application-wide path such as "coBorrowers[0].name"
	// to its message.
	Errors map[string]string `json:"errors"`
	// ByRecord holds the same errors keyed by record identity with
	// record-local paths, ready for Manager.ApplyErrors.
	ByRecord map[domain.RecordID]map[string]string `json:"-"`
}

// Valid reports whether no rule failed.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Paths returns the failing paths in sorted order.
func (r Result) Paths() []string {
	out := make([]string, 0, len(r.Errors))
	for p := range r.Errors {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Err returns nil for a valid result, otherwise a validation_error wrapping
// a *Failure.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return dErrors.Wrap(&Failure{Errors: r.Errors}, dErrors.CodeValidation,
		fmt.Sprintf("%d field(s) need attention", len(r.Errors)))
}

// Failure carries the field errors that blocked a submission.
type Failure struct {
	Errors map[string]string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(f.Errors))
}

// Validate evaluates every record of every list plus the non-party
// sections. Paths of repeated lists carry the position at evaluation time.
func (e *Engine) Validate(ctx context.Context, app *application.Application, catalogs reference.Catalogs) Result {
	res := Result{
		Errors:   map[string]string{},
		ByRecord: map[domain.RecordID]map[string]string{},
	}
	for _, kind := range app.Lists() {
		records, _ := app.Records(kind)
		indexed := application.PolicyFor(kind).Max != 1
		for i, rec := range records {
			prefix := string(kind)
			if indexed {
				prefix = fmt.Sprintf("%s[%d]", kind, i)
			}
			errs := e.ValidateRecord(ctx, rec, kind, catalogs)
			if len(errs) == 0 {
				continue
			}
			res.ByRecord[rec.ID] = errs
			for path, msg := range errs {
				res.Errors[prefix+"."+path] = msg
			}
		}
	}
	for path, msg := range e.validateSections(app, catalogs) {
		res.Errors[path] = msg
	}
	if !res.Valid() {
		e.logger.DebugContext(ctx, "application invalid", "application_id", app.ID.String(), "errors", len(res.Errors))
	}
	return res
}

// ValidateRecord evaluates one record as a member of list. Returned paths
// are record-local.
func (e *Engine) ValidateRecord(ctx context.Context, rec *application.PartyRecord, list application.ListKind, catalogs reference.Catalogs) map[string]string {
	errs := map[string]string{}
	for _, f := range application.Fields() {
		value := strings.TrimSpace(f.Get(rec))
		if value == "" {
			if f.IsRequired(rec, list) {
				errs[f.Path] = MsgRequired
			}
			continue
		}
		if msg := e.checkValue(f.Kind, f.CatalogFor(rec), value, catalogs); msg != "" {
			errs[f.Path] = msg
		}
	}
	e.checkDates(ctx, rec, errs)
	e.checkDocuments(rec, list, errs)
	e.checkRelatedRows(rec, catalogs, errs)
	return errs
}

func (e *Engine) checkValue(kind application.Kind, name reference.CatalogName, value string, catalogs reference.Catalogs) string {
	if rule, ok := formatTags[kind]; ok {
		if err := e.validate.Var(value, rule.tag); err != nil {
			return rule.message
		}
	}
	if kind == application.KindDate {
		if _, ok := parseDate(value); !ok {
			return MsgDate
		}
	}
	// Gewogs are fetched per record and membership is not checked here.
	if name != "" && name != reference.CatalogGewogs && len(catalogs.Options(name)) > 0 {
		if _, ok := catalogs.Find(name, value); !ok {
			return MsgUnknownOption
		}
	}
	return ""
}

func (e *Engine) checkDates(ctx context.Context, rec *application.PartyRecord, errs map[string]string) {
	today := dateOf(requestcontext.Now(ctx))

	issue, hasIssue := parseDate(rec.IdentificationIssueDate)
	expiry, hasExpiry := parseDate(rec.IdentificationExpiryDate)
	if hasIssue && issue.After(today) {
		errs[application.FieldIdentificationIssueDate] = MsgIssueFuture
	}
	if hasExpiry && expiry.Before(today) {
		errs[application.FieldIdentificationExpiryDate] = MsgExpired
	}
	if hasIssue && hasExpiry && !issue.Before(expiry) {
		errs[application.FieldIdentificationExpiryDate] = MsgExpiryOrder
	}

	if dob, ok := parseDate(rec.DateOfBirth); ok && dob.After(today.AddDate(-e.minimumAge, 0, 0)) {
		errs[application.FieldDateOfBirth] = fmt.Sprintf("must be at least %d years old", e.minimumAge)
	}
}

func (e *Engine) checkDocuments(rec *application.PartyRecord, list application.ListKind, errs map[string]string) {
	always := application.PolicyFor(list).AddressProofAlways
	for _, b := range []struct {
		block geo.Block
		slot  files.Slot
	}{
		{geo.BlockPermanent, files.SlotPermanentAddressProof},
		{geo.BlockCurrent, files.SlotCurrentAddressProof},
	} {
		addr := rec.Address(b.block)
		if (always || addr.Mode == geo.ModeFreeform) && addr.ProofDocument == nil {
			errs[string(b.slot)] = MsgRequired
		}
	}
	if rec.PEP.State() == pep.StateSelfYes && rec.PEP.IdentificationProof == nil {
		errs[string(files.SlotPEPIdentificationProof)] = MsgRequired
	}
}

func (e *Engine) checkRelatedRows(rec *application.PartyRecord, catalogs reference.Catalogs, errs map[string]string) {
	if rec.PEP.State() != pep.StateRelatedYes {
		return
	}
	if len(rec.PEP.RelatedPeps) == 0 {
		errs["relatedPeps"] = MsgRelatedRows
		return
	}
	for i, row := range rec.PEP.RelatedPeps {
		for _, field := range application.RowRequirement {
			path := fmt.Sprintf("relatedPeps[%d].%s", i, field)
			value := strings.TrimSpace(row.Get(field))
			switch {
			case value == "":
				errs[path] = MsgRequired
			case field == pep.RowCategory:
				if msg := e.checkValue(application.KindSelect, reference.CatalogPEPCategories, value, catalogs); msg != "" {
					errs[path] = msg
				}
			}
		}
	}
}

func (e *Engine) validateSections(app *application.Application, catalogs reference.Catalogs) map[string]string {
	errs := map[string]string{}
	individual := app.Business == nil || app.Business.Type() == application.BusinessIndividual
	for _, section := range application.Sections() {
		if section == application.SectionBusiness && individual {
			continue
		}
		for _, f := range application.SectionFields(section) {
			path := section + "." + f.Name
			value := strings.TrimSpace(f.Get(app))
			if value == "" {
				if f.Required {
					errs[path] = MsgRequired
				}
				continue
			}
			if msg := e.checkValue(f.Kind, f.Catalog, value, catalogs); msg != "" {
				errs[path] = msg
			}
		}
	}
	return errs
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
