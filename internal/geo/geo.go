// Package geo decides whether an address is captured against the Bhutanese
// administrative hierarchy or as free text, and manages the
// dzongkhag→gewog option cascade for each address block of each record.
package geo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"loanintake/internal/cascade"
	"loanintake/internal/platform/logger"
	"loanintake/internal/platform/metrics"
	"loanintake/internal/reference"
	"loanintake/pkg/domain"
	dErrors "loanintake/pkg/domain-errors"
)

// Mode is the active shape of an address block.
type Mode string

const (
	// ModeStructured: region values are dzongkhag and gewog codes.
	ModeStructured Mode = "structured"
	// ModeFreeform: region values are free text and a proof document is required.
	ModeFreeform Mode = "freeform"
)

// Block names one of the two address blocks of a record.
type Block string

const (
	BlockPermanent Block = "permanent"
	BlockCurrent   Block = "current"
)

// ParseBlock validates a block name.
func ParseBlock(s string) (Block, error) {
	switch b := Block(s); b {
	case BlockPermanent, BlockCurrent:
		return b, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown address block %q", s))
}

// Key scopes gewog options to one address block of one record.
type Key struct {
	Record domain.RecordID
	Block  Block
}

// IsBhutan reports whether a country value denotes Bhutan: either the value
// itself mentions Bhutan or the catalog entry whose code it matches does.
func IsBhutan(value string, countries []reference.Option) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if containsBhutan(value) {
		return true
	}
	for _, opt := range countries {
		if opt.Code == value {
			return containsBhutan(opt.Label)
		}
	}
	return false
}

func containsBhutan(s string) bool {
	return strings.Contains(strings.ToLower(s), "bhutan")
}

// ModeFor returns the address mode for a country value. An unset country is
// freeform until a country is chosen.
func ModeFor(country string, countries []reference.Option) Mode {
	if IsBhutan(country, countries) {
		return ModeStructured
	}
	return ModeFreeform
}

// GewogSource supplies gewogs for a dzongkhag. A failing source returns an
// empty list.
type GewogSource interface {
	GewogsFor(ctx context.Context, dzongkhagCode string) []reference.Option
}

// Resolver owns the gewog options of every address block in one application.
type Resolver struct {
	countries []reference.Option
	source    GewogSource
	gewogs    *cascade.Tracker[Key]
	logger    *slog.Logger
	metrics   *metrics.Metrics
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

func NewResolver(countries []reference.Option, source GewogSource, opts ...Option) *Resolver {
	r := &Resolver{
		countries: countries,
		source:    source,
		gewogs:    cascade.New[Key](),
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the address mode of a country value.
func (r *Resolver) Mode(country string) Mode {
	return ModeFor(country, r.countries)
}

// Fetch is a pending gewog fetch created by SelectDzongkhag.
type Fetch struct {
	ticket cascade.Ticket[Key]
}

// SelectDzongkhag registers dzongkhag as the live selection of key and returns
// the fetch to run. ok is false when nothing needs fetching.
func (r *Resolver) SelectDzongkhag(key Key, dzongkhag string) (Fetch, bool) {
	ticket, ok := r.gewogs.Begin(key, dzongkhag)
	return Fetch{ticket: ticket}, ok
}

// Run performs the fetch and stores its result unless a newer selection or a
// country switch has superseded it. It reports whether the result was kept.
func (r *Resolver) Run(ctx context.Context, f Fetch) bool {
	options := r.source.GewogsFor(ctx, f.ticket.Parent)
	if r.gewogs.Resolve(f.ticket, options) {
		return true
	}
	r.logger.DebugContext(ctx, "discarded stale gewog response",
		"record_id", f.ticket.Key.Record.String(),
		"block", f.ticket.Key.Block,
		"dzongkhag", f.ticket.Parent,
	)
	r.metrics.IncrementStaleDiscarded("gewog")
	return false
}

// CountryChanged reports whether moving a block from country before to after
// changes its mode. When it does, the block's gewog options are dropped and
// the caller must clear its region values.
func (r *Resolver) CountryChanged(key Key, before, after string) bool {
	if r.Mode(before) == r.Mode(after) {
		return false
	}
	r.gewogs.Clear(key)
	return true
}

// Gewogs returns the gewog options of key.
func (r *Resolver) Gewogs(key Key) []reference.Option {
	return r.gewogs.Options(key)
}

// Forget drops all options owned by record.
func (r *Resolver) Forget(record domain.RecordID) {
	r.gewogs.Prune(func(k Key) bool { return k.Record == record })
}
