package models

import (
	id "taskboard/pkg/domain"
	dErrors "taskboard/pkg/domain-errors"
)

// Board is the aggregate root: a user's board with its columns and, through
// them, its cards. Every structural mutation goes through a Board method.
//
// Invariants:
//   - Title is non-empty
//   - Column positions are a dense permutation of 1..len(columns)
//   - Card priorities inside each column are a dense permutation of 1..len(cards)
//   - Each column's BoardID is the board id; each card's ColumnID is its column id
//
// Methods check every precondition before touching state, so a failed call
// leaves the aggregate unchanged. A Board is not safe for concurrent use; the
// service loads a fresh instance per command.
type Board struct {
	id      id.BoardID
	title   string
	userID  id.UserID
	version int
	columns []*Column
}

// NewBoard creates an empty board owned by userID.
func NewBoard(boardID id.BoardID, title string, userID id.UserID) (*Board, error) {
	if boardID.IsNil() {
		return nil, dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("BoardId"))
	}
	if title == "" {
		return nil, dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("Title"))
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("UserId"))
	}
	return &Board{id: boardID, title: title, userID: userID}, nil
}

func (b *Board) ID() id.BoardID    { return b.id }
func (b *Board) Title() string     { return b.title }
func (b *Board) UserID() id.UserID { return b.userID }

// Version is the persistence version the board was loaded at. Stores use it
// for optimistic concurrency; the aggregate never changes it.
func (b *Board) Version() int { return b.version }

// Columns returns the columns ordered by position.
func (b *Board) Columns() []*Column {
	return sortedBySlot(b.columns)
}

// Column looks up a column by id.
func (b *Board) Column(columnID id.ColumnID) (*Column, bool) {
	for _, column := range b.columns {
		if column.id == columnID {
			return column, true
		}
	}
	return nil, false
}

// ColumnExists reports whether the board holds columnID.
// The zero id is rejected with CodeRequiredField.
func (b *Board) ColumnExists(columnID id.ColumnID) (bool, error) {
	if columnID.IsNil() {
		return false, dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("ColumnId"))
	}
	_, ok := b.Column(columnID)
	return ok, nil
}

// AddColumn appends column at position len+1.
func (b *Board) AddColumn(column *Column) error {
	if column == nil {
		return dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("Column"))
	}
	exists, err := b.ColumnExists(column.id)
	if err != nil {
		return err
	}
	if exists {
		return dErrors.New(dErrors.CodeAlreadyPresent, dErrors.AlreadyPresent("Column", "Board"))
	}

	column.linkBoard(b.id, len(b.columns)+1)
	b.columns = append(b.columns, column)
	return nil
}

// UpdateTitle replaces the board title.
func (b *Board) UpdateTitle(newTitle string) error {
	if newTitle == "" {
		return dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("NewTitle"))
	}
	b.title = newTitle
	return nil
}

// UpdateColumnPositionInBoard moves a column to newPosition and shifts the
// columns in between by one. A position past the last column places the
// column last.
func (b *Board) UpdateColumnPositionInBoard(columnID id.ColumnID, newPosition int) error {
	if newPosition < 1 {
		return dErrors.New(dErrors.CodeInvalidRange, dErrors.MustBeGreaterThan("PositionInBoard", 0))
	}
	column, err := b.requireColumn(columnID, "Column")
	if err != nil {
		return err
	}

	reposition(b.columns, column, newPosition)
	return nil
}

// UpdateColumnTitle replaces the title of one column.
func (b *Board) UpdateColumnTitle(columnID id.ColumnID, newTitle string) error {
	if newTitle == "" {
		return dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("ColumnNewTitle"))
	}
	column, err := b.requireColumn(columnID, "Column")
	if err != nil {
		return err
	}

	column.updateTitle(newTitle)
	return nil
}

// AddCardToColumn appends card to the end of a column.
func (b *Board) AddCardToColumn(columnID id.ColumnID, card *Card) error {
	column, err := b.requireColumn(columnID, "Column")
	if err != nil {
		return err
	}
	return column.addCard(card)
}

// UpdateCardPriorityInColumn moves a card inside its column.
func (b *Board) UpdateCardPriorityInColumn(columnID id.ColumnID, cardID id.CardID, newPriority int) error {
	if newPriority < 1 {
		return dErrors.New(dErrors.CodeInvalidRange, dErrors.MustBeGreaterThan("Priority", 0))
	}
	column, err := b.requireColumn(columnID, "Column")
	if err != nil {
		return err
	}
	return column.updateCardPriority(cardID, newPriority)
}

// CardExistsInColumn reports whether cardID is in the given column.
func (b *Board) CardExistsInColumn(columnID id.ColumnID, cardID id.CardID) (bool, error) {
	column, err := b.requireColumn(columnID, "Column")
	if err != nil {
		return false, err
	}
	return column.CardExists(cardID)
}

// MoveCardBetweenColumns detaches a card from one column, appends it to
// another and then moves it to newPriority there. Both columns stay dense;
// the card ends at min(newPriority, len(to)).
//
// Moving within the same column behaves like UpdateCardPriorityInColumn.
func (b *Board) MoveCardBetweenColumns(cardID id.CardID, fromColumnID, toColumnID id.ColumnID, newPriority int) error {
	if newPriority < 1 {
		return dErrors.New(dErrors.CodeInvalidRange, dErrors.MustBeGreaterThan("Priority", 0))
	}
	from, err := b.requireColumn(fromColumnID, "FromColumn")
	if err != nil {
		return err
	}
	to, err := b.requireColumn(toColumnID, "ToColumn")
	if err != nil {
		return err
	}
	exists, err := from.CardExists(cardID)
	if err != nil {
		return err
	}
	if !exists {
		return dErrors.New(dErrors.CodeNotFound, dErrors.NotFound("Card"))
	}
	if from != to {
		if _, dup := to.Card(cardID); dup {
			return dErrors.New(dErrors.CodeAlreadyPresent, dErrors.AlreadyPresent("Card", "Column"))
		}
	}

	card, err := from.removeCard(cardID)
	if err != nil {
		return err
	}
	if err := to.addCard(card); err != nil {
		return err
	}
	return to.updateCardPriority(card.id, newPriority)
}

// CheckInvariants verifies ordering and linkage of the whole aggregate.
func (b *Board) CheckInvariants() error {
	if err := checkDense(b.columns, "column positions"); err != nil {
		return err
	}
	for _, column := range b.columns {
		if column.boardID != b.id {
			return dErrors.New(dErrors.CodeInvalidRange, "column "+column.id.String()+" is linked to another board")
		}
		if err := checkDense(column.cards, "card priorities in column "+column.id.String()); err != nil {
			return err
		}
		for _, card := range column.cards {
			if card.columnID != column.id {
				return dErrors.New(dErrors.CodeInvalidRange, "card "+card.id.String()+" is linked to another column")
			}
		}
	}
	return nil
}

// requireColumn resolves a column or returns NotFound naming entity.
func (b *Board) requireColumn(columnID id.ColumnID, entity string) (*Column, error) {
	exists, err := b.ColumnExists(columnID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, dErrors.NotFound(entity))
	}
	column, _ := b.Column(columnID)
	return column, nil
}
