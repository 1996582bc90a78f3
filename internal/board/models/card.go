package models

import (
	id "taskboard/pkg/domain"
	dErrors "taskboard/pkg/domain-errors"
)

// Card is a unit of work inside a column.
//
// A card is either detached (zero ColumnID, priority 0) or attached to exactly
// one column with a priority in 1..len(column). Only the owning column moves a
// card between those states.
type Card struct {
	id       id.CardID
	title    string
	columnID id.ColumnID
	priority int
}

// NewCard creates a detached card.
func NewCard(cardID id.CardID, title string) (*Card, error) {
	if cardID.IsNil() {
		return nil, dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("CardId"))
	}
	if title == "" {
		return nil, dErrors.New(dErrors.CodeRequiredField, dErrors.RequiredField("Title"))
	}
	return &Card{id: cardID, title: title}, nil
}

func (c *Card) ID() id.CardID         { return c.id }
func (c *Card) Title() string         { return c.title }
func (c *Card) ColumnID() id.ColumnID { return c.columnID }
func (c *Card) Priority() int         { return c.priority }

// IsAttached reports whether the card currently belongs to a column.
func (c *Card) IsAttached() bool {
	return !c.columnID.IsNil()
}

func (c *Card) linkColumn(columnID id.ColumnID, priority int) {
	c.columnID = columnID
	c.priority = priority
}

func (c *Card) unlinkColumn() {
	c.columnID = id.ColumnID{}
	c.priority = 0
}

func (c *Card) definePriority(priority int) {
	c.priority = priority
}

func (c *Card) slot() int     { return c.priority }
func (c *Card) setSlot(p int) { c.definePriority(p) }
