package models

import (
	id "taskboard/pkg/domain"
	dErrors "taskboard/pkg/domain-errors"
)

// Column is an ordered list of cards inside a board.
//
// Invariants:
//   - Title is non-empty
//   - Card priorities are a dense permutation of 1..len(cards)
//   - A detached column has a zero BoardID and position 0
//
// Cards are owned: the slice is never handed out, only sorted copies of the
// card pointers, and Card exposes no exported mutators.
type Column struct {
	id       id.ColumnID
	title    string
	boardID  id.BoardID
	position int
	cards    []*Card
}

// NewColumn creates a detached, empty column.
func NewColumn(columnID id.ColumnID, title string) (*Column, error) {
	if columnID.IsNil() {
		return nil, dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("ColumnId"))
	}
	if title == "" {
		return nil, dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("Title"))
	}
	return &Column{id: columnID, title: title}, nil
}

func (c *Column) ID() id.ColumnID     { return c.id }
func (c *Column) Title() string       { return c.title }
func (c *Column) BoardID() id.BoardID { return c.boardID }
func (c *Column) PositionInBoard() int {
	return c.position
}

// Len returns the number of cards in the column.
func (c *Column) Len() int { return len(c.cards) }

// Cards returns the cards ordered by priority.
func (c *Column) Cards() []*Card {
	return sortedBySlot(c.cards)
}

// Card looks up a card by id.
func (c *Column) Card(cardID id.CardID) (*Card, bool) {
	for _, card := range c.cards {
		if card.id == cardID {
			return card, true
		}
	}
	return nil, false
}

// CardExists reports whether the column holds cardID.
// The zero id is rejected with CodeRequiredField.
func (c *Column) CardExists(cardID id.CardID) (bool, error) {
	if cardID.IsNil() {
		return false, dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("CardId"))
	}
	_, ok := c.Card(cardID)
	return ok, nil
}

func (c *Column) linkBoard(boardID id.BoardID, position int) {
	c.boardID = boardID
	c.position = position
}

func (c *Column) definePositionInBoard(position int) {
	c.position = position
}

func (c *Column) updateTitle(newTitle string) {
	c.title = newTitle
}

// addCard appends card with priority len+1.
func (c *Column) addCard(card *Card) error {
	if card == nil {
		return dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("Card"))
	}
	exists, err := c.CardExists(card.id)
	if err != nil {
		return err
	}
	if exists {
		return dErrors.New(dErrors.CodeAlreadyPresent, dErrors.AlreadyPresent("Card", "Column"))
	}

	card.linkColumn(c.id, len(c.cards)+1)
	c.cards = append(c.cards, card)
	return nil
}

// updateCardPriority moves a card to newPriority, shifting the cards in
// between. Priorities past the end are clamped to the last slot.
func (c *Column) updateCardPriority(cardID id.CardID, newPriority int) error {
	if newPriority < 1 {
		return dErrors.New(dErrors.CodeInvalidRange, dErrors.MustBeGreaterThan("Priority", 0))
	}
	exists, err := c.CardExists(cardID)
	if err != nil {
		return err
	}
	if !exists {
		return dErrors.New(dErrors.CodeNotFound, dErrors.NotFound("Card"))
	}

	card, _ := c.Card(cardID)
	reposition(c.cards, card, newPriority)
	return nil
}

// removeCard detaches a card and closes the gap it leaves.
func (c *Column) removeCard(cardID id.CardID) (*Card, error) {
	exists, err := c.CardExists(cardID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, dErrors.NotFound("Card"))
	}

	idx := 0
	for i, card := range c.cards {
		if card.id == cardID {
			idx = i
			break
		}
	}
	removed := c.cards[idx]
	c.cards = append(c.cards[:idx:idx], c.cards[idx+1:]...)

	closeGap(c.cards, removed.priority)
	removed.unlinkColumn()
	return removed, nil
}

func (c *Column) slot() int     { return c.position }
func (c *Column) setSlot(p int) { c.definePositionInBoard(p) }
