package pep

import (
	"context"
	"log/slog"

	"loanintake/internal/cascade"
	"loanintake/internal/platform/logger"
	"loanintake/internal/platform/metrics"
	"loanintake/internal/reference"
	"loanintake/pkg/domain"
)

// Key scopes sub-category options to a record's self-declaration (zero Row)
// or to one related row.
type Key struct {
	Record domain.RecordID
	Row    domain.RowID
}

// SelfKey is the key of a record's own declaration.
func SelfKey(record domain.RecordID) Key {
	return Key{Record: record}
}

// RowKey is the key of one related row.
func RowKey(record domain.RecordID, row domain.RowID) Key {
	return Key{Record: record, Row: row}
}

// SubCategorySource supplies sub-categories for a PEP category. A failing
// source returns an empty list.
type SubCategorySource interface {
	PEPSubCategoriesFor(ctx context.Context, categoryCode string) []reference.Option
}

// Resolver owns the sub-category options of every declaration and related
// row in one application.
type Resolver struct {
	source  SubCategorySource
	options *cascade.Tracker[Key]
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Resolver)

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

func NewResolver(source SubCategorySource, opts ...Option) *Resolver {
	r := &Resolver{
		source:  source,
		options: cascade.New[Key](),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch is a pending sub-category fetch.
type Fetch struct {
	ticket cascade.Ticket[Key]
}

// SelectCategory registers category as the live selection of key. ok is
// false when the category is blank and nothing needs fetching.
func (r *Resolver) SelectCategory(key Key, category string) (Fetch, bool) {
	ticket, ok := r.options.Begin(key, category)
	return Fetch{ticket: ticket}, ok
}

// Run performs the fetch and keeps the result only if the category is still
// the live selection of its key.
func (r *Resolver) Run(ctx context.Context, f Fetch) bool {
	options := r.source.PEPSubCategoriesFor(ctx, f.ticket.Parent)
	if r.options.Resolve(f.ticket, options) {
		return true
	}
	r.logger.DebugContext(ctx, "discarded stale pep sub-category response",
		"record_id", f.ticket.Key.Record.String(),
		"row_id", f.ticket.Key.Row.String(),
		"category", f.ticket.Parent,
	)
	r.metrics.IncrementStaleDiscarded("pep_sub_category")
	return false
}

// SubCategories returns the options of key.
func (r *Resolver) SubCategories(key Key) []reference.Option {
	return r.options.Options(key)
}

// Clear drops the options of key.
func (r *Resolver) Clear(key Key) {
	r.options.Clear(key)
}

// ForgetRows drops the options of every related row of record, keeping the
// self-declaration.
func (r *Resolver) ForgetRows(record domain.RecordID) {
	var zero domain.RowID
	r.options.Prune(func(k Key) bool { return k.Record == record && k.Row != zero })
}

// Forget drops every option list owned by record.
func (r *Resolver) Forget(record domain.RecordID) {
	r.options.Prune(func(k Key) bool { return k.Record == record })
}
