// Package domain holds typed identities shared across bounded contexts.
//
// Every identity is a UUID under a distinct named type so a record identity can
// never be passed where a related-PEP row identity is expected. Identities are
// assigned at creation and never derived from list position.
package domain

import (
	"github.com/google/uuid"

	dErrors "loanintake/pkg/domain-errors"
)

type (
	ApplicationID uuid.UUID
	RecordID      uuid.UUID
	RowID         uuid.UUID
	RequestID     uuid.UUID
)

func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }
func NewRecordID() RecordID           { return RecordID(uuid.New()) }
func NewRowID() RowID                 { return RowID(uuid.New()) }
func NewRequestID() RequestID         { return RequestID(uuid.New()) }

func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id RecordID) String() string      { return uuid.UUID(id).String() }
func (id RowID) String() string         { return uuid.UUID(id).String() }
func (id RequestID) String() string     { return uuid.UUID(id).String() }

func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id RowID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets identities serve as JSON values and map keys.
func (id RecordID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id RowID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id ApplicationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application id")
	return ApplicationID(u), err
}

func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record id")
	return RecordID(u), err
}

func ParseRowID(s string) (RowID, error) {
	u, err := parseUUID(s, "row id")
	return RowID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}
