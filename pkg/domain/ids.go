// Package domain holds the typed identifiers shared across the board modules.
//
// Each identifier wraps a UUID in its own named type so a ColumnID can never be
// passed where a CardID is expected. Construct identifiers with the Parse
// functions at trust boundaries and with the New functions when minting.
package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "taskboard/pkg/domain-errors"
)

type (
	BoardID  uuid.UUID
	ColumnID uuid.UUID
	CardID   uuid.UUID
	UserID   uuid.UUID
)

func NewBoardID() BoardID   { return BoardID(uuid.New()) }
func NewColumnID() ColumnID { return ColumnID(uuid.New()) }
func NewCardID() CardID     { return CardID(uuid.New()) }

// ParseBoardID parses a board identifier from external input.
func ParseBoardID(s string) (BoardID, error) {
	u, err := parseUUID(s, "BoardId")
	return BoardID(u), err
}

// ParseColumnID parses a column identifier from external input.
func ParseColumnID(s string) (ColumnID, error) {
	u, err := parseUUID(s, "ColumnId")
	return ColumnID(u), err
}

// ParseCardID parses a card identifier from external input.
func ParseCardID(s string) (CardID, error) {
	u, err := parseUUID(s, "CardId")
	return CardID(u), err
}

// ParseUserID parses a user identifier from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "UserId")
	return UserID(u), err
}

// parseUUID rejects empty, malformed and nil UUIDs with CodeInvalidInput.
func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.RequiredField(field))
	}
	if !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.InvalidFormat(field))
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.InvalidFormat(field))
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, dErrors.RequiredField(field))
	}
	return u, nil
}

func (id BoardID) String() string  { return uuid.UUID(id).String() }
func (id BoardID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ColumnID) String() string { return uuid.UUID(id).String() }
func (id ColumnID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CardID) String() string   { return uuid.UUID(id).String() }
func (id CardID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// Text marshalling keeps identifiers readable in JSON snapshots and cache
// entries. The nil UUID is accepted on the way in so detached entities
// round-trip.

func (id BoardID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *BoardID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id ColumnID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *ColumnID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id CardID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *CardID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
