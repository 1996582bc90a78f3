package models

import (
	id "taskboard/pkg/domain"
	dErrors "taskboard/pkg/domain-errors"
)

// BoardSnapshot is the read-only, serialisable view of a board. Columns are
// ordered by position and cards by priority. Stores, caches and the HTTP
// layer only ever see snapshots; aggregates are rebuilt with Restore.
type BoardSnapshot struct {
	ID      id.BoardID       `json:"id"`
	Title   string           `json:"title"`
	UserID  id.UserID        `json:"user_id"`
	Version int              `json:"version"`
	Columns []ColumnSnapshot `json:"columns"`
}

type ColumnSnapshot struct {
	ID              id.ColumnID    `json:"id"`
	Title           string         `json:"title"`
	BoardID         id.BoardID     `json:"board_id"`
	PositionInBoard int            `json:"position_in_board"`
	Cards           []CardSnapshot `json:"cards"`
}

type CardSnapshot struct {
	ID       id.CardID   `json:"id"`
	Title    string      `json:"title"`
	ColumnID id.ColumnID `json:"column_id"`
	Priority int         `json:"priority"`
}

// Snapshot captures the current state of the board.
func (b *Board) Snapshot() BoardSnapshot {
	snap := BoardSnapshot{
		ID:      b.id,
		Title:   b.title,
		UserID:  b.userID,
		Version: b.version,
		Columns: make([]ColumnSnapshot, 0, len(b.columns)),
	}
	for _, column := range b.Columns() {
		snap.Columns = append(snap.Columns, column.snapshot())
	}
	return snap
}

func (c *Column) snapshot() ColumnSnapshot {
	snap := ColumnSnapshot{
		ID:              c.id,
		Title:           c.title,
		BoardID:         c.boardID,
		PositionInBoard: c.position,
		Cards:           make([]CardSnapshot, 0, len(c.cards)),
	}
	for _, card := range c.Cards() {
		snap.Cards = append(snap.Cards, CardSnapshot{
			ID:       card.id,
			Title:    card.title,
			ColumnID: card.columnID,
			Priority: card.priority,
		})
	}
	return snap
}

// Restore rebuilds an aggregate from a snapshot and verifies its invariants.
// Positions are taken as stored, not reassigned, so a corrupted snapshot is
// reported with CodeInvalidRange instead of being silently repaired.
func Restore(snap BoardSnapshot) (*Board, error) {
	board, err := NewBoard(snap.ID, snap.Title, snap.UserID)
	if err != nil {
		return nil, err
	}
	board.version = snap.Version

	seenCards := make(map[id.CardID]struct{})
	for _, cs := range snap.Columns {
		column, err := NewColumn(cs.ID, cs.Title)
		if err != nil {
			return nil, err
		}
		if _, dup := board.Column(cs.ID); dup {
			return nil, dErrors.New(dErrors.CodeAlreadyPresent, dErrors.AlreadyPresent("Column", "Board"))
		}
		column.linkBoard(cs.BoardID, cs.PositionInBoard)

		for _, ks := range cs.Cards {
			card, err := NewCard(ks.ID, ks.Title)
			if err != nil {
				return nil, err
			}
			if _, dup := seenCards[ks.ID]; dup {
				return nil, dErrors.New(dErrors.CodeAlreadyPresent, dErrors.AlreadyPresent("Card", "Column"))
			}
			seenCards[ks.ID] = struct{}{}
			card.linkColumn(ks.ColumnID, ks.Priority)
			column.cards = append(column.cards, card)
		}
		board.columns = append(board.columns, column)
	}

	if err := board.CheckInvariants(); err != nil {
		return nil, err
	}
	return board, nil
}

// Clone returns a deep copy of the snapshot.
func (s BoardSnapshot) Clone() BoardSnapshot {
	out := s
	out.Columns = make([]ColumnSnapshot, len(s.Columns))
	for i, column := range s.Columns {
		out.Columns[i] = column
		out.Columns[i].Cards = append(make([]CardSnapshot, 0, len(column.Cards)), column.Cards...)
	}
	return out
}
