package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	id "taskboard/pkg/domain"
	dErrors "taskboard/pkg/domain-errors"
)

// Request bodies for board commands. JSON names follow the public API
// (boardId, newColumnPositionInBoard, ...). Validate reports every violated
// field at once and, on success, stores the parsed ids for the service.

// maxTitleLength bounds every title to keep rows and cache entries small.
const maxTitleLength = 200

type CreateBoardRequest struct {
	BoardTitle string `json:"boardTitle"`
}

func (r *CreateBoardRequest) Normalize() {
	if r == nil {
		return
	}
	r.BoardTitle = strings.TrimSpace(r.BoardTitle)
}

func (r *CreateBoardRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var v validator
	v.title(r.BoardTitle, "BoardTitle")
	return v.err()
}

type UpdateBoardTitleRequest struct {
	BoardID       string `json:"boardId"`
	NewBoardTitle string `json:"newBoardTitle"`

	parsedBoardID id.BoardID
}

func (r *UpdateBoardTitleRequest) Normalize() {
	if r == nil {
		return
	}
	r.BoardID = strings.TrimSpace(r.BoardID)
	r.NewBoardTitle = strings.TrimSpace(r.NewBoardTitle)
}

func (r *UpdateBoardTitleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var v validator
	r.parsedBoardID = parseField(&v, r.BoardID, "BoardId", id.ParseBoardID)
	v.title(r.NewBoardTitle, "NewBoardTitle")
	return v.err()
}

func (r *UpdateBoardTitleRequest) ParsedBoardID() id.BoardID { return r.parsedBoardID }

type AddColumnRequest struct {
	BoardID     string `json:"boardId"`
	ColumnTitle string `json:"columnTitle"`

	parsedBoardID id.BoardID
}

func (r *AddColumnRequest) Normalize() {
	if r == nil {
		return
	}
	r.BoardID = strings.TrimSpace(r.BoardID)
	r.ColumnTitle = strings.TrimSpace(r.ColumnTitle)
}

func (r *AddColumnRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var v validator
	r.parsedBoardID = parseField(&v, r.BoardID, "BoardId", id.ParseBoardID)
	v.title(r.ColumnTitle, "ColumnTitle")
	return v.err()
}

func (r *AddColumnRequest) ParsedBoardID() id.BoardID { return r.parsedBoardID }

type UpdateColumnTitleRequest struct {
	BoardID        string `json:"boardId"`
	ColumnID       string `json:"columnId"`
	NewColumnTitle string `json:"newColumnTitle"`

	parsedBoardID  id.BoardID
	parsedColumnID id.ColumnID
}

func (r *UpdateColumnTitleRequest) Normalize() {
	if r == nil {
		return
	}
	r.BoardID = strings.TrimSpace(r.BoardID)
	r.ColumnID = strings.TrimSpace(r.ColumnID)
	r.NewColumnTitle = strings.TrimSpace(r.NewColumnTitle)
}

func (r *UpdateColumnTitleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var v validator
	r.parsedBoardID = parseField(&v, r.BoardID, "BoardId", id.ParseBoardID)
	r.parsedColumnID = parseField(&v, r.ColumnID, "ColumnId", id.ParseColumnID)
	v.title(r.NewColumnTitle, "NewColumnTitle")
	return v.err()
}

func (r *UpdateColumnTitleRequest) ParsedBoardID() id.BoardID   { return r.parsedBoardID }
func (r *UpdateColumnTitleRequest) ParsedColumnID() id.ColumnID { return r.parsedColumnID }

type UpdateColumnPositionRequest struct {
	BoardID                  string `json:"boardId"`
	ColumnID                 string `json:"columnId"`
	NewColumnPositionInBoard int    `json:"newColumnPositionInBoard"`

	parsedBoardID  id.BoardID
	parsedColumnID id.ColumnID
}

func (r *UpdateColumnPositionRequest) Normalize() {
	if r == nil {
		return
	}
	r.BoardID = strings.TrimSpace(r.BoardID)
	r.ColumnID = strings.TrimSpace(r.ColumnID)
}

func (r *UpdateColumnPositionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var v validator
	r.parsedBoardID = parseField(&v, r.BoardID, "BoardId", id.ParseBoardID)
	r.parsedColumnID = parseField(&v, r.ColumnID, "ColumnId", id.ParseColumnID)
	v.positive(r.NewColumnPositionInBoard, "NewColumnPositionInBoard")
	return v.err()
}

func (r *UpdateColumnPositionRequest) ParsedBoardID() id.BoardID   { return r.parsedBoardID }
func (r *UpdateColumnPositionRequest) ParsedColumnID() id.ColumnID { return r.parsedColumnID }

type AddCardRequest struct {
	BoardID   string `json:"boardId"`
	ColumnID  string `json:"columnId"`
	CardTitle string `json:"cardTitle"`

	parsedBoardID  id.BoardID
	parsedColumnID id.ColumnID
}

func (r *AddCardRequest) Normalize() {
	if r == nil {
		return
	}
	r.BoardID = strings.TrimSpace(r.BoardID)
	r.ColumnID = strings.TrimSpace(r.ColumnID)
	r.CardTitle = strings.TrimSpace(r.CardTitle)
}

func (r *AddCardRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var v validator
	r.parsedBoardID = parseField(&v, r.BoardID, "BoardId", id.ParseBoardID)
	r.parsedColumnID = parseField(&v, r.ColumnID, "ColumnId", id.ParseColumnID)
	v.title(r.CardTitle, "CardTitle")
	return v.err()
}

func (r *AddCardRequest) ParsedBoardID() id.BoardID   { return r.parsedBoardID }
func (r *AddCardRequest) ParsedColumnID() id.ColumnID { return r.parsedColumnID }

type UpdateCardPriorityRequest struct {
	BoardID                 string `json:"boardId"`
	ColumnID                string `json:"columnId"`
	CardID                  string `json:"cardId"`
	NewCardPriorityInColumn int    `json:"newCardPriorityInColumn"`

	parsedBoardID  id.BoardID
	parsedColumnID id.ColumnID
	parsedCardID   id.CardID
}

func (r *UpdateCardPriorityRequest) Normalize() {
	if r == nil {
		return
	}
	r.BoardID = strings.TrimSpace(r.BoardID)
	r.ColumnID = strings.TrimSpace(r.ColumnID)
	r.CardID = strings.TrimSpace(r.CardID)
}

func (r *UpdateCardPriorityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var v validator
	r.parsedBoardID = parseField(&v, r.BoardID, "BoardId", id.ParseBoardID)
	r.parsedColumnID = parseField(&v, r.ColumnID, "ColumnId", id.ParseColumnID)
	r.parsedCardID = parseField(&v, r.CardID, "CardId", id.ParseCardID)
	v.positive(r.NewCardPriorityInColumn, "NewCardPriorityInColumn")
	return v.err()
}

func (r *UpdateCardPriorityRequest) ParsedBoardID() id.BoardID   { return r.parsedBoardID }
func (r *UpdateCardPriorityRequest) ParsedColumnID() id.ColumnID { return r.parsedColumnID }
func (r *UpdateCardPriorityRequest) ParsedCardID() id.CardID     { return r.parsedCardID }

type MoveCardRequest struct {
	BoardID              string `json:"boardId"`
	FromColumnID         string `json:"fromColumnId"`
	ToColumnID           string `json:"toColumnId"`
	CardID               string `json:"cardId"`
	CardPriorityInColumn int    `json:"cardPriorityInColumn"`

	parsedBoardID      id.BoardID
	parsedFromColumnID id.ColumnID
	parsedToColumnID   id.ColumnID
	parsedCardID       id.CardID
}

func (r *MoveCardRequest) Normalize() {
	if r == nil {
		return
	}
	r.BoardID = strings.TrimSpace(r.BoardID)
	r.FromColumnID = strings.TrimSpace(r.FromColumnID)
	r.ToColumnID = strings.TrimSpace(r.ToColumnID)
	r.CardID = strings.TrimSpace(r.CardID)
}

func (r *MoveCardRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var v validator
	r.parsedBoardID = parseField(&v, r.BoardID, "BoardId", id.ParseBoardID)
	r.parsedFromColumnID = parseField(&v, r.FromColumnID, "FromColumnId", id.ParseColumnID)
	r.parsedToColumnID = parseField(&v, r.ToColumnID, "ToColumnId", id.ParseColumnID)
	r.parsedCardID = parseField(&v, r.CardID, "CardId", id.ParseCardID)
	v.positive(r.CardPriorityInColumn, "CardPriorityInColumn")
	return v.err()
}

func (r *MoveCardRequest) ParsedBoardID() id.BoardID       { return r.parsedBoardID }
func (r *MoveCardRequest) ParsedFromColumnID() id.ColumnID { return r.parsedFromColumnID }
func (r *MoveCardRequest) ParsedToColumnID() id.ColumnID   { return r.parsedToColumnID }
func (r *MoveCardRequest) ParsedCardID() id.CardID         { return r.parsedCardID }

// validator accumulates field messages in declaration order.
type validator struct {
	details []string
}

func (v *validator) add(msg string) {
	v.details = append(v.details, msg)
}

func (v *validator) title(value, field string) {
	switch {
	case value == "":
		v.add(dErrors.RequiredField(field))
	case utf8.RuneCountInString(value) > maxTitleLength:
		v.add(fmt.Sprintf("%s must be at most %d characters.", field, maxTitleLength))
	}
}

func (v *validator) positive(value int, field string) {
	if value <= 0 {
		v.add(dErrors.MustBeGreaterThan(field, 0))
	}
}

func (v *validator) err() error {
	return dErrors.NewValidation(v.details)
}

// parseField parses a required id. An empty or nil id yields the
// required-field message; anything else unparsable yields invalid-format.
func parseField[T any](v *validator, raw, field string, parse func(string) (T, error)) T {
	var zero T
	if raw == "" {
		v.add(dErrors.RequiredField(field))
		return zero
	}
	parsed, err := parse(raw)
	if err != nil {
		if isNilUUID(raw) {
			v.add(dErrors.RequiredField(field))
		} else {
			v.add(dErrors.InvalidFormat(field))
		}
		return zero
	}
	return parsed
}

func isNilUUID(raw string) bool {
	return strings.Trim(raw, "0-") == ""
}
