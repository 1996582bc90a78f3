package handler

import (
	"taskboard/internal/board/models"
	id "taskboard/pkg/domain"
)

// AddColumnResponse is returned by POST /api/boards/columns.
type AddColumnResponse struct {
	ColumnID id.ColumnID          `json:"columnId"`
	Board    models.BoardSnapshot `json:"board"`
}

// AddCardResponse is returned by POST /api/boards/cards.
type AddCardResponse struct {
	CardID id.CardID            `json:"cardId"`
	Board  models.BoardSnapshot `json:"board"`
}
