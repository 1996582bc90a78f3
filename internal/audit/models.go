package audit

import (
	"time"

	id "taskboard/pkg/domain"
)

// Action names a board mutation recorded in the audit trail.
type Action string

const (
	ActionBoardCreated        Action = "board_created"
	ActionBoardTitleUpdated   Action = "board_title_updated"
	ActionColumnAdded         Action = "column_added"
	ActionColumnTitleUpdated  Action = "column_title_updated"
	ActionColumnMoved         Action = "column_moved"
	ActionCardAdded           Action = "card_added"
	ActionCardPriorityUpdated Action = "card_priority_updated"
	ActionCardMoved           Action = "card_moved"
)

// Event is emitted by the board service after a successful save. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time  `json:"timestamp"`
	UserID    id.UserID  `json:"user_id"`
	BoardID   id.BoardID `json:"board_id"`
	Action    Action     `json:"action"`
	// Subject is the id of the column or card the action touched, or the
	// board id for board-level actions.
	Subject   string `json:"subject"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
}
