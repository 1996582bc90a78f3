package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"taskboard/internal/board/models"
	id "taskboard/pkg/domain"
	"taskboard/pkg/platform/sentinel"
	txcontext "taskboard/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// PostgresStore persists boards in three tables (boards, board_columns,
// board_cards). Save bumps boards.version under a compare-and-set and
// rewrites the board's columns and cards in the same transaction.
type PostgresStore struct {
	db        *sql.DB
	txTimeout time.Duration
}

type PostgresOption func(*PostgresStore)

// WithTxTimeout bounds each write transaction whose context has no deadline.
func WithTxTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) { s.txTimeout = d }
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, txTimeout: txcontext.DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the board tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate board schema: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error) {
	stored := snap.Clone()
	stored.Version = 1
	err := s.inTx(ctx, func(ctx context.Context) error {
		_, err := s.execer(ctx).ExecContext(ctx, `
			INSERT INTO boards (id, user_id, title, version)
			VALUES ($1, $2, $3, $4)
		`, stored.ID.String(), stored.UserID.String(), stored.Title, stored.Version)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("board %s already exists: %w", stored.ID, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert board: %w", err)
		}
		return s.writeChildren(ctx, stored)
	})
	if err != nil {
		return models.BoardSnapshot{}, err
	}
	return stored, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, boardID id.BoardID) (models.BoardSnapshot, error) {
	var (
		snap   models.BoardSnapshot
		rawID  uuid.UUID
		userID uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, user_id, title, version FROM boards WHERE id = $1
	`, boardID.String()).Scan(&rawID, &userID, &snap.Title, &snap.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BoardSnapshot{}, sentinel.ErrNotFound
		}
		return models.BoardSnapshot{}, fmt.Errorf("find board: %w", err)
	}
	snap.ID = id.BoardID(rawID)
	snap.UserID = id.UserID(userID)

	boards := []models.BoardSnapshot{snap}
	if err := s.loadChildren(ctx, boards); err != nil {
		return models.BoardSnapshot{}, err
	}
	return boards[0], nil
}

// ListByUser returns the user's boards ordered by title, then id.
func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]models.BoardSnapshot, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, title, version FROM boards
		WHERE user_id = $1
		ORDER BY title, id
	`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	boards := make([]models.BoardSnapshot, 0)
	for rows.Next() {
		var (
			rawID uuid.UUID
			snap  = models.BoardSnapshot{UserID: userID}
		)
		if err := rows.Scan(&rawID, &snap.Title, &snap.Version); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		snap.ID = id.BoardID(rawID)
		boards = append(boards, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boards: %w", err)
	}
	if err := s.loadChildren(ctx, boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// Save writes snap if the stored version still equals snap.Version.
func (s *PostgresStore) Save(ctx context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error) {
	stored := snap.Clone()
	err := s.inTx(ctx, func(ctx context.Context) error {
		err := s.execer(ctx).QueryRowContext(ctx, `
			UPDATE boards SET title = $1, version = version + 1, updated_at = now()
			WHERE id = $2 AND version = $3
			RETURNING version
		`, snap.Title, snap.ID.String(), snap.Version).Scan(&stored.Version)
		if errors.Is(err, sql.ErrNoRows) {
			return s.missingOrStale(ctx, snap)
		}
		if err != nil {
			return fmt.Errorf("update board: %w", err)
		}

		if _, err := s.execer(ctx).ExecContext(ctx, `
			DELETE FROM board_cards
			WHERE column_id IN (SELECT id FROM board_columns WHERE board_id = $1)
		`, snap.ID.String()); err != nil {
			return fmt.Errorf("clear cards: %w", err)
		}
		if _, err := s.execer(ctx).ExecContext(ctx, `
			DELETE FROM board_columns WHERE board_id = $1
		`, snap.ID.String()); err != nil {
			return fmt.Errorf("clear columns: %w", err)
		}
		return s.writeChildren(ctx, stored)
	})
	if err != nil {
		return models.BoardSnapshot{}, err
	}
	return stored, nil
}

func (s *PostgresStore) missingOrStale(ctx context.Context, snap models.BoardSnapshot) error {
	var current int
	err := s.execer(ctx).QueryRowContext(ctx, `SELECT version FROM boards WHERE id = $1`, snap.ID.String()).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check board version: %w", err)
	}
	return fmt.Errorf("board %s is at version %d, not %d: %w", snap.ID, current, snap.Version, sentinel.ErrConflict)
}

// writeChildren batch-inserts the columns and cards of snap with unnest.
func (s *PostgresStore) writeChildren(ctx context.Context, snap models.BoardSnapshot) error {
	if len(snap.Columns) == 0 {
		return nil
	}
	var (
		columnIDs    = make([]string, 0, len(snap.Columns))
		columnTitles = make([]string, 0, len(snap.Columns))
		positions    = make([]int64, 0, len(snap.Columns))
		cardIDs      []string
		cardColumns  []string
		cardTitles   []string
		priorities   []int64
	)
	for _, column := range snap.Columns {
		columnIDs = append(columnIDs, column.ID.String())
		columnTitles = append(columnTitles, column.Title)
		positions = append(positions, int64(column.PositionInBoard))
		for _, card := range column.Cards {
			cardIDs = append(cardIDs, card.ID.String())
			cardColumns = append(cardColumns, column.ID.String())
			cardTitles = append(cardTitles, card.Title)
			priorities = append(priorities, int64(card.Priority))
		}
	}

	if _, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO board_columns (id, board_id, title, position_in_board)
		SELECT c.id, $1, c.title, c.position
		FROM unnest($2::uuid[], $3::text[], $4::int[]) AS c(id, title, position)
	`, snap.ID.String(), pq.Array(columnIDs), pq.Array(columnTitles), pq.Array(positions)); err != nil {
		return fmt.Errorf("insert columns: %w", err)
	}
	if len(cardIDs) == 0 {
		return nil
	}
	if _, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO board_cards (id, column_id, title, priority)
		SELECT k.id, k.column_id, k.title, k.priority
		FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::int[]) AS k(id, column_id, title, priority)
	`, pq.Array(cardIDs), pq.Array(cardColumns), pq.Array(cardTitles), pq.Array(priorities)); err != nil {
		return fmt.Errorf("insert cards: %w", err)
	}
	return nil
}

// loadChildren fills the columns and cards of boards in two queries.
func (s *PostgresStore) loadChildren(ctx context.Context, boards []models.BoardSnapshot) error {
	if len(boards) == 0 {
		return nil
	}
	boardIndex := make(map[id.BoardID]int, len(boards))
	boardIDs := make([]string, 0, len(boards))
	for i := range boards {
		boards[i].Columns = make([]models.ColumnSnapshot, 0)
		boardIndex[boards[i].ID] = i
		boardIDs = append(boardIDs, boards[i].ID.String())
	}

	type columnRef struct{ board, column int }
	columnIndex := make(map[id.ColumnID]columnRef)

	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, board_id, title, position_in_board
		FROM board_columns
		WHERE board_id = ANY($1::uuid[])
		ORDER BY board_id, position_in_board
	`, pq.Array(boardIDs))
	if err != nil {
		return fmt.Errorf("load columns: %w", err)
	}
	for rows.Next() {
		var (
			rawID, rawBoard uuid.UUID
			column          models.ColumnSnapshot
		)
		if err := rows.Scan(&rawID, &rawBoard, &column.Title, &column.PositionInBoard); err != nil {
			rows.Close()
			return fmt.Errorf("scan column: %w", err)
		}
		column.ID = id.ColumnID(rawID)
		column.BoardID = id.BoardID(rawBoard)
		column.Cards = make([]models.CardSnapshot, 0)
		bi := boardIndex[column.BoardID]
		columnIndex[column.ID] = columnRef{board: bi, column: len(boards[bi].Columns)}
		boards[bi].Columns = append(boards[bi].Columns, column)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate columns: %w", err)
	}
	rows.Close()

	rows, err = s.execer(ctx).QueryContext(ctx, `
		SELECT k.id, k.column_id, k.title, k.priority
		FROM board_cards k
		JOIN board_columns c ON c.id = k.column_id
		WHERE c.board_id = ANY($1::uuid[])
		ORDER BY k.column_id, k.priority
	`, pq.Array(boardIDs))
	if err != nil {
		return fmt.Errorf("load cards: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rawID, rawColumn uuid.UUID
			card             models.CardSnapshot
		)
		if err := rows.Scan(&rawID, &rawColumn, &card.Title, &card.Priority); err != nil {
			return fmt.Errorf("scan card: %w", err)
		}
		card.ID = id.CardID(rawID)
		card.ColumnID = id.ColumnID(rawColumn)
		ref, ok := columnIndex[card.ColumnID]
		if !ok {
			continue
		}
		column := &boards[ref.board].Columns[ref.column]
		column.Cards = append(column.Cards, card)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cards: %w", err)
	}
	return nil
}

// inTx runs fn in a transaction carried on ctx, or joins the caller's one.
// A unique violation surfacing at commit means a concurrent writer won.
func (s *PostgresStore) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}
	err := txcontext.Run(ctx, s.db, s.txTimeout, fn)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("write board: %w", sentinel.ErrConflict)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
