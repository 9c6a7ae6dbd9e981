package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"loanintake/internal/files"
	"loanintake/internal/geo"
	"loanintake/internal/identity"
	"loanintake/internal/pep"
	"loanintake/internal/reference"
	"loanintake/pkg/domain"
	dErrors "loanintake/pkg/domain-errors"
)

// effect is a dependent fetch started under the lock and run after it is
// released.
type effect func(ctx context.Context)

// Manager applies edits to one application. All state changes happen under
// mu; dependent fetches run outside it and are discarded on arrival when
// their trigger has been superseded.
type Manager struct {
	mu       sync.Mutex
	app      *Application
	catalogs reference.Catalogs
	geo      *geo.Resolver
	pep      *pep.Resolver
	identity *identity.Workflow
	gate     *files.Gate
	logger   *slog.Logger
}

// ID returns the application identity.
func (m *Manager) ID() domain.ApplicationID {
	return m.app.ID
}

// Catalogs returns the catalogs loaded for this application.
func (m *Manager) Catalogs() reference.Catalogs {
	return m.catalogs
}

// Snapshot returns a deep copy of the application.
func (m *Manager) Snapshot() *Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.app.Clone()
}

// Record returns a copy of one record.
func (m *Manager) Record(list ListKind, id domain.RecordID) (*PartyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, _, err := m.find(list, id)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// Add appends a new record to list.
func (m *Manager) Add(ctx context.Context, list ListKind) (domain.RecordID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records, ok := m.app.Records(list)
	if !ok {
		return domain.RecordID{}, listMissing(list)
	}
	if limit := PolicyFor(list).Max; limit > 0 && len(records) >= limit {
		return domain.RecordID{}, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("%s holds at most %d entries", list, limit))
	}
	rec := NewPartyRecord()
	m.app.setRecords(list, append(records, rec))
	m.logger.DebugContext(ctx, "party record added", "list", list, "record_id", rec.ID.String())
	return rec.ID, nil
}

// Remove deletes a record and every side-map entry it owns. Removing the
// last entry of a list that requires one is rejected.
func (m *Manager) Remove(ctx context.Context, list ListKind, id domain.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	records, _, err := m.findList(list)
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return recordMissing(list, id)
	}
	if len(records) <= PolicyFor(list).Min {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("%s requires at least %d entry", list, PolicyFor(list).Min))
	}
	kept := make([]*PartyRecord, 0, len(records)-1)
	kept = append(kept, records[:i]...)
	kept = append(kept, records[i+1:]...)
	m.app.setRecords(list, kept)
	m.forget(id)
	m.logger.DebugContext(ctx, "party record removed", "list", list, "record_id", id.String())
	return nil
}

// Update sets one field of a record and applies its cascades. Dependent
// option fetches complete before Update returns.
func (m *Manager) Update(ctx context.Context, list ListKind, id domain.RecordID, path, value string) error {
	field, err := LookupField(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	rec, _, err := m.find(list, id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	effects, err := m.apply(rec, field, value)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.run(ctx, effects)
	return nil
}

// apply sets a field with its cascades. Caller holds mu.
func (m *Manager) apply(rec *PartyRecord, field Field, raw string) ([]effect, error) {
	value := strings.TrimSpace(raw)
	switch field.Kind {
	case KindAnswer:
		a, err := pep.ParseAnswer(value)
		if err != nil {
			return nil, err
		}
		value = string(a)
	default:
		value = m.canonical(rec, field, value)
	}
	delete(rec.Errors, field.Path)

	var effects []effect
	switch field.Path {
	case FieldMaritalStatus:
		field.set(rec, value)
		rec.IsMarried = IsMarried(value, m.catalogs.Options(reference.CatalogMaritalStatuses))
		if !rec.IsMarried {
			rec.Spouse = Spouse{}
		}

	case FieldPEPPerson:
		rec.PEP.SetPerson(pep.Answer(value))
		if rec.PEP.Person == pep.AnswerYes {
			m.pep.ForgetRows(rec.ID)
		} else {
			m.pep.Clear(pep.SelfKey(rec.ID))
		}

	case FieldPEPRelated:
		rec.PEP.SetRelated(pep.Answer(value))
		if rec.PEP.Related != pep.AnswerYes {
			m.pep.ForgetRows(rec.ID)
		}

	case FieldPEPCategory:
		if rec.PEP.SetCategory(value) {
			if fetch, ok := m.pep.SelectCategory(pep.SelfKey(rec.ID), value); ok {
				effects = append(effects, func(ctx context.Context) { m.pep.Run(ctx, fetch) })
			} else {
				m.pep.Clear(pep.SelfKey(rec.ID))
			}
		}

	case AddressPath(geo.BlockPermanent, AddressCountry), AddressPath(geo.BlockCurrent, AddressCountry):
		m.setCountry(rec, blockOf(field.Path), value)

	case AddressPath(geo.BlockPermanent, AddressRegionPrimary), AddressPath(geo.BlockCurrent, AddressRegionPrimary):
		if e := m.setDzongkhag(rec, blockOf(field.Path), value); e != nil {
			effects = append(effects, e)
		}

	default:
		field.set(rec, value)
	}
	return effects, nil
}

func (m *Manager) canonical(rec *PartyRecord, field Field, value string) string {
	name := field.CatalogFor(rec)
	switch name {
	case "":
		return value
	case reference.CatalogGewogs:
		key := geo.Key{Record: rec.ID, Block: blockOf(field.Path)}
		if opt, ok := reference.FindOption(m.geo.Gewogs(key), value); ok {
			return opt.Code
		}
		return value
	}
	return m.catalogs.Canonical(name, value)
}

func (m *Manager) setCountry(rec *PartyRecord, block geo.Block, country string) {
	addr := rec.Address(block)
	before := addr.Country
	addr.Country = country
	if m.geo.CountryChanged(geo.Key{Record: rec.ID, Block: block}, before, country) {
		addr.RegionPrimary = ""
		addr.RegionSecondary = ""
	}
	addr.Mode = m.geo.Mode(country)
}

func (m *Manager) setDzongkhag(rec *PartyRecord, block geo.Block, dzongkhag string) effect {
	addr := rec.Address(block)
	if addr.Mode != geo.ModeStructured {
		addr.RegionPrimary = dzongkhag
		return nil
	}
	if addr.RegionPrimary == dzongkhag {
		return nil
	}
	addr.RegionPrimary = dzongkhag
	addr.RegionSecondary = ""
	fetch, ok := m.geo.SelectDzongkhag(geo.Key{Record: rec.ID, Block: block}, dzongkhag)
	if !ok {
		return nil
	}
	return func(ctx context.Context) { m.geo.Run(ctx, fetch) }
}

// AddRelatedPep appends an empty related-person row.
func (m *Manager) AddRelatedPep(ctx context.Context, list ListKind, id domain.RecordID) (domain.RowID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, _, err := m.find(list, id)
	if err != nil {
		return domain.RowID{}, err
	}
	row, err := rec.PEP.AddRow()
	if err != nil {
		return domain.RowID{}, err
	}
	return row.ID, nil
}

// RemoveRelatedPep deletes a row and its sub-category options. The last row
// of a related declaration cannot be removed.
func (m *Manager) RemoveRelatedPep(ctx context.Context, list ListKind, id domain.RecordID, row domain.RowID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, _, err := m.find(list, id)
	if err != nil {
		return err
	}
	if err := rec.PEP.RemoveRow(row); err != nil {
		return err
	}
	m.pep.Clear(pep.RowKey(rec.ID, row))
	return nil
}

// UpdateRelatedPep sets one field of a related row. A category change
// refetches that row's sub-categories only.
func (m *Manager) UpdateRelatedPep(ctx context.Context, list ListKind, id domain.RecordID, row domain.RowID, field pep.RowField, value string) error {
	m.mu.Lock()
	rec, _, err := m.find(list, id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	entry, err := rec.PEP.Row(row)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	value = strings.TrimSpace(value)
	key := pep.RowKey(rec.ID, row)
	switch field {
	case pep.RowCategory:
		value = m.catalogs.Canonical(reference.CatalogPEPCategories, value)
	case pep.RowSubCategory:
		if opt, ok := reference.FindOption(m.pep.SubCategories(key), value); ok {
			value = opt.Code
		}
	}
	changed, err := entry.Set(field, value)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	delete(rec.Errors, RowPath(rec.PEP.RelatedPeps, row, string(field)))

	var effects []effect
	if changed {
		if fetch, ok := m.pep.SelectCategory(key, value); ok {
			effects = append(effects, func(ctx context.Context) { m.pep.Run(ctx, fetch) })
		} else {
			m.pep.Clear(key)
		}
	}
	m.mu.Unlock()
	m.run(ctx, effects)
	return nil
}

// RowPath is the record-relative error path of a related row field, e.g.
// "relatedPeps[1].category".
func RowPath(rows []pep.RelatedEntry, row domain.RowID, field string) string {
	for i := range rows {
		if rows[i].ID == row {
			return fmt.Sprintf("relatedPeps[%d].%s", i, field)
		}
	}
	return ""
}

// RowProofField is the error path suffix of a related row's proof document.
const RowProofField = "identificationProof"

// SetFile runs ref through the gate and stores it in slot. A rejected file
// leaves the slot as it was and records the inline error under the slot name.
func (m *Manager) SetFile(ctx context.Context, list ListKind, id domain.RecordID, slot files.Slot, ref files.Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, _, err := m.find(list, id)
	if err != nil {
		return err
	}
	target := rec.File(slot)
	if target == nil {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown file slot %q", slot))
	}
	if slot == files.SlotPEPIdentificationProof && rec.PEP.State() != pep.StateSelfYes {
		return dErrors.New(dErrors.CodeInvariantViolation, "identification proof applies only to a declared PEP")
	}
	accepted, err := m.gate.Accept(ref)
	if err != nil {
		setError(rec, string(slot), dErrors.MessageOf(err))
		return err
	}
	*target = &accepted
	delete(rec.Errors, string(slot))
	m.logger.DebugContext(ctx, "file attached", "record_id", rec.ID.String(), "slot", slot, "size", accepted.Size)
	return nil
}

// ClearFile empties slot.
func (m *Manager) ClearFile(ctx context.Context, list ListKind, id domain.RecordID, slot files.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, _, err := m.find(list, id)
	if err != nil {
		return err
	}
	target := rec.File(slot)
	if target == nil {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown file slot %q", slot))
	}
	*target = nil
	return nil
}

// SetRelatedPepProof attaches an identification proof to a related row.
func (m *Manager) SetRelatedPepProof(ctx context.Context, list ListKind, id domain.RecordID, row domain.RowID, ref files.Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, _, err := m.find(list, id)
	if err != nil {
		return err
	}
	entry, err := rec.PEP.Row(row)
	if err != nil {
		return err
	}
	path := RowPath(rec.PEP.RelatedPeps, row, RowProofField)
	accepted, err := m.gate.Accept(ref)
	if err != nil {
		setError(rec, path, dErrors.MessageOf(err))
		return err
	}
	entry.IdentificationProof = &accepted
	delete(rec.Errors, path)
	return nil
}

// UpdateSection sets a scalar of a non-party section.
func (m *Manager) UpdateSection(ctx context.Context, section, name, value string) error {
	field, err := lookupSectionField(section, name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	target := field.get(m.app)
	if target == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("%s does not apply to a %s borrower", section, m.app.Business.Type()))
	}
	value = strings.TrimSpace(value)
	if field.Catalog != "" {
		value = m.catalogs.Canonical(field.Catalog, value)
	}
	*target = value
	return nil
}

// SetBusinessType switches the business variant. Records of lists the new
// variant does not carry are destroyed.
func (m *Manager) SetBusinessType(ctx context.Context, t BusinessType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.app.Business != nil && m.app.Business.Type() == t {
		return nil
	}
	if m.app.Business != nil {
		for _, kind := range m.app.Business.Lists() {
			records, _ := m.app.Business.records(kind)
			for _, rec := range records {
				m.forget(rec.ID)
			}
		}
	}
	m.app.Business = NewBusiness(t)
	m.logger.DebugContext(ctx, "business type changed", "application_id", m.app.ID.String(), "business_type", t)
	return nil
}

// Gewogs returns the gewog options of one address block.
func (m *Manager) Gewogs(list ListKind, id domain.RecordID, block geo.Block) ([]reference.Option, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, _, err := m.find(list, id); err != nil {
		return nil, err
	}
	return m.geo.Gewogs(geo.Key{Record: id, Block: block}), nil
}

// SubCategories returns the PEP sub-category options of a record's own
// declaration, or of one related row when row is non-nil.
func (m *Manager) SubCategories(list ListKind, id domain.RecordID, row *domain.RowID) ([]reference.Option, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, _, err := m.find(list, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return m.pep.SubCategories(pep.SelfKey(id)), nil
	}
	if _, err := rec.PEP.Row(*row); err != nil {
		return nil, err
	}
	return m.pep.SubCategories(pep.RowKey(id, *row)), nil
}

// ApplyErrors replaces every record's error map with the given per-record
// errors. Records absent from errs are cleared.
func (m *Manager) ApplyErrors(errs map[domain.RecordID]map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kind := range m.app.Lists() {
		records, _ := m.app.Records(kind)
		for _, rec := range records {
			rec.Errors = nil
			if e, ok := errs[rec.ID]; ok && len(e) > 0 {
				rec.Errors = make(map[string]string, len(e))
				for k, v := range e {
					rec.Errors[k] = v
				}
			}
		}
	}
}

func (m *Manager) run(ctx context.Context, effects []effect) {
	if len(effects) == 1 {
		effects[0](ctx)
		return
	}
	var g errgroup.Group
	for _, e := range effects {
		g.Go(func() error {
			e(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Manager) forget(id domain.RecordID) {
	m.geo.Forget(id)
	m.pep.Forget(id)
	m.identity.Forget(id)
}

func (m *Manager) findList(list ListKind) ([]*PartyRecord, bool, error) {
	records, ok := m.app.Records(list)
	if !ok {
		return nil, false, listMissing(list)
	}
	return records, true, nil
}

func (m *Manager) find(list ListKind, id domain.RecordID) (*PartyRecord, int, error) {
	records, _, err := m.findList(list)
	if err != nil {
		return nil, -1, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, -1, recordMissing(list, id)
	}
	return records[i], i, nil
}

func indexOf(records []*PartyRecord, id domain.RecordID) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func blockOf(path string) geo.Block {
	if strings.HasPrefix(path, string(geo.BlockCurrent)) {
		return geo.BlockCurrent
	}
	return geo.BlockPermanent
}

func setError(rec *PartyRecord, path, message string) {
	if rec.Errors == nil {
		rec.Errors = make(map[string]string)
	}
	rec.Errors[path] = message
}

func listMissing(list ListKind) error {
	return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("application has no %s list", list))
}

func recordMissing(list ListKind, id domain.RecordID) error {
	return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no %s record %s", list, id))
}
