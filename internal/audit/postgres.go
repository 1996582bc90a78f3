package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"

	id "taskboard/pkg/domain"
	txcontext "taskboard/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// PostgresStore appends audit events to board_audit_events. Inside a
// transaction carried on ctx the insert joins it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO board_audit_events (board_id, user_id, action, subject, request_id, client_ip, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.BoardID.String(), event.UserID.String(), string(event.Action), event.Subject,
		event.RequestID, event.ClientIP, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByBoard returns the board's events in append order.
func (s *PostgresStore) ListByBoard(ctx context.Context, boardID id.BoardID) ([]Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT user_id, action, subject, request_id, client_ip, occurred_at
		FROM board_audit_events
		WHERE board_id = $1
		ORDER BY id
	`, boardID.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var (
			userID uuid.UUID
			action string
			event  = Event{BoardID: boardID}
		)
		if err := rows.Scan(&userID, &action, &event.Subject, &event.RequestID, &event.ClientIP, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.UserID = id.UserID(userID)
		event.Action = Action(action)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
