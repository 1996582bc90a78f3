package store

import (
	"github.com/google/uuid"

	"taskboard/internal/board/models"
	id "taskboard/pkg/domain"
)

func newUserID() id.UserID { return id.UserID(uuid.New()) }

// sampleBoard returns a board with a "To do" column holding two cards and an
// empty "Done" column.
func sampleBoard(userID id.UserID, title string) models.BoardSnapshot {
	boardID := id.NewBoardID()
	todo := id.NewColumnID()
	done := id.NewColumnID()
	return models.BoardSnapshot{
		ID:     boardID,
		Title:  title,
		UserID: userID,
		Columns: []models.ColumnSnapshot{
			{
				ID: todo, Title: "To do", BoardID: boardID, PositionInBoard: 1,
				Cards: []models.CardSnapshot{
					{ID: id.NewCardID(), Title: "Sleep", ColumnID: todo, Priority: 1},
					{ID: id.NewCardID(), Title: "Work", ColumnID: todo, Priority: 2},
				},
			},
			{ID: done, Title: "Done", BoardID: boardID, PositionInBoard: 2, Cards: []models.CardSnapshot{}},
		},
	}
}

// moveFirstCard moves the top card of the first column to the bottom of the
// second, the way a MoveCard command would leave the snapshot.
func moveFirstCard(snap models.BoardSnapshot) models.BoardSnapshot {
	out := snap.Clone()
	from := &out.Columns[0]
	to := &out.Columns[1]
	card := from.Cards[0]
	from.Cards = from.Cards[1:]
	for i := range from.Cards {
		from.Cards[i].Priority = i + 1
	}
	card.ColumnID = to.ID
	card.Priority = len(to.Cards) + 1
	to.Cards = append(to.Cards, card)
	return out
}
