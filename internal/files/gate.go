// Package files holds uploaded document references and the gate that decides
// whether an upload may occupy a document slot.
package files

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"loanintake/internal/platform/logger"
	"loanintake/internal/platform/metrics"
	dErrors "loanintake/pkg/domain-errors"
)

// ErrFileRejected marks an upload refused by the gate. The slot stays unset.
var ErrFileRejected = errors.New("file rejected")

// Ref is an accepted upload held until submission.
type Ref struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// Slot names a per-record document field.
type Slot string

const (
	SlotPassportPhoto          Slot = "passportPhoto"
	SlotPermanentAddressProof  Slot = "permanentAddressProof"
	SlotCurrentAddressProof    Slot = "currentAddressProof"
	SlotPEPIdentificationProof Slot = "pepIdentificationProof"
)

var slots = map[Slot]struct{}{
	SlotPassportPhoto:          {},
	SlotPermanentAddressProof:  {},
	SlotCurrentAddressProof:    {},
	SlotPEPIdentificationProof: {},
}

// ParseSlot validates a slot name.
func ParseSlot(s string) (Slot, error) {
	slot := Slot(s)
	if _, ok := slots[slot]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown file slot %q", s))
	}
	return slot, nil
}

// Rejection reasons, also used as metric labels.
const (
	ReasonEmpty    = "empty"
	ReasonTooLarge = "too_large"
	ReasonType     = "type"
)

// Gate enforces the accepted MIME kinds and the maximum size.
type Gate struct {
	maxBytes int64
	allowed  map[string]struct{}
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Gate)

func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

func NewGate(maxBytes int64, allowedTypes []string, opts ...Option) *Gate {
	g := &Gate{
		maxBytes: maxBytes,
		allowed:  make(map[string]struct{}, len(allowedTypes)),
		logger:   logger.Discard(),
	}
	for _, t := range allowedTypes {
		g.allowed[normalizeType(t)] = struct{}{}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check accepts or rejects ref. A rejection wraps ErrFileRejected in a
// file_rejected domain error carrying the inline message.
func (g *Gate) Check(ref Ref) error {
	size := max(ref.Size, int64(len(ref.Data)))
	switch {
	case size == 0:
		return g.reject(ref, ReasonEmpty, "file is empty")
	case size > g.maxBytes:
		return g.reject(ref, ReasonTooLarge, fmt.Sprintf("file exceeds the %d MB limit", g.maxBytes>>20))
	}

	declared := normalizeType(ref.ContentType)
	if declared != "" && !g.accepts(declared) {
		return g.reject(ref, ReasonType, "only PDF, JPEG and PNG files are accepted")
	}
	if len(ref.Data) > 0 {
		sniffed := normalizeType(mimetype.Detect(ref.Data).String())
		if !g.accepts(sniffed) {
			return g.reject(ref, ReasonType, "only PDF, JPEG and PNG files are accepted")
		}
	} else if declared == "" {
		return g.reject(ref, ReasonType, "file type is unknown")
	}
	return nil
}

// Accept checks ref and returns it with size and content type filled in.
func (g *Gate) Accept(ref Ref) (Ref, error) {
	if err := g.Check(ref); err != nil {
		return Ref{}, err
	}
	ref.Size = max(ref.Size, int64(len(ref.Data)))
	if ref.ContentType == "" {
		ref.ContentType = mimetype.Detect(ref.Data).String()
	}
	return ref, nil
}

func (g *Gate) accepts(contentType string) bool {
	_, ok := g.allowed[contentType]
	return ok
}

func (g *Gate) reject(ref Ref, reason, message string) error {
	g.logger.Debug("upload rejected", "file_name", ref.Name, "reason", reason, "size", ref.Size)
	g.metrics.IncrementFileRejected(reason)
	return dErrors.Wrap(ErrFileRejected, dErrors.CodeFileRejected, message)
}

func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(t); err == nil {
		t = parsed
	}
	return strings.ToLower(t)
}
