//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"taskboard/internal/board/models"
	"taskboard/internal/board/store"
	id "taskboard/pkg/domain"
	"taskboard/pkg/platform/sentinel"
	"taskboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "board_cards", "board_columns", "boards")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestMigrateIsRepeatable() {
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	snap := newBoard(id.UserID(uuid.New()), "Home")

	created, err := s.store.Create(ctx, snap)
	s.Require().NoError(err)
	s.Equal(1, created.Version)

	found, err := s.store.FindByID(ctx, snap.ID)
	s.Require().NoError(err)
	s.Equal(created, found)

	board, err := models.Restore(found)
	s.Require().NoError(err)
	s.Equal(2, board.Columns()[0].Len())
}

func (s *PostgresStoreSuite) TestCreateDuplicate() {
	ctx := context.Background()
	snap := newBoard(id.UserID(uuid.New()), "Home")
	_, err := s.store.Create(ctx, snap)
	s.Require().NoError(err)

	_, err = s.store.Create(ctx, snap)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), id.NewBoardID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSaveRewritesColumnsAndCards() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, newBoard(id.UserID(uuid.New()), "Home"))
	s.Require().NoError(err)

	board, err := models.Restore(created)
	s.Require().NoError(err)
	todo := board.Columns()[0]
	done := board.Columns()[1]
	card := todo.Cards()[1]
	s.Require().NoError(board.MoveCardBetweenColumns(card.ID(), todo.ID(), done.ID(), 1))
	s.Require().NoError(board.UpdateColumnPositionInBoard(done.ID(), 1))
	s.Require().NoError(board.UpdateTitle("House"))

	saved, err := s.store.Save(ctx, board.Snapshot())
	s.Require().NoError(err)
	s.Equal(2, saved.Version)

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(saved, found)
	s.Equal("House", found.Title)
	s.Equal("Done", found.Columns[0].Title)
	s.Require().Len(found.Columns[0].Cards, 1)
	s.Equal(card.ID(), found.Columns[0].Cards[0].ID)
	s.Len(found.Columns[1].Cards, 1)
}

func (s *PostgresStoreSuite) TestSaveStaleVersion() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, newBoard(id.UserID(uuid.New()), "Home"))
	s.Require().NoError(err)
	_, err = s.store.Save(ctx, created)
	s.Require().NoError(err)

	_, err = s.store.Save(ctx, created)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestSaveMissing() {
	snap := newBoard(id.UserID(uuid.New()), "Ghost")
	snap.Version = 1
	_, err := s.store.Save(context.Background(), snap)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentSaves() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, newBoard(id.UserID(uuid.New()), "Home"))
	s.Require().NoError(err)

	const writers = 5
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := created.Clone()
			next.Title = "Writer " + string(rune('A'+i))
			if _, err := s.store.Save(ctx, next); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(2, found.Version)
}

func (s *PostgresStoreSuite) TestListByUser() {
	ctx := context.Background()
	owner := id.UserID(uuid.New())
	for _, title := range []string{"Work", "Home"} {
		_, err := s.store.Create(ctx, newBoard(owner, title))
		s.Require().NoError(err)
	}
	_, err := s.store.Create(ctx, newBoard(id.UserID(uuid.New()), "Other"))
	s.Require().NoError(err)

	boards, err := s.store.ListByUser(ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(boards, 2)
	s.Equal("Home", boards[0].Title)
	s.Equal("Work", boards[1].Title)
	s.Len(boards[0].Columns, 2)
	s.Len(boards[0].Columns[0].Cards, 2)
}

func newBoard(userID id.UserID, title string) models.BoardSnapshot {
	board, err := models.NewBoard(id.NewBoardID(), title, userID)
	if err != nil {
		panic(err)
	}
	for _, columnTitle := range []string{"To do", "Done"} {
		column, err := models.NewColumn(id.NewColumnID(), columnTitle)
		if err != nil {
			panic(err)
		}
		if err := board.AddColumn(column); err != nil {
			panic(err)
		}
	}
	todo := board.Columns()[0]
	for _, cardTitle := range []string{"Sleep", "Work"} {
		card, err := models.NewCard(id.NewCardID(), cardTitle)
		if err != nil {
			panic(err)
		}
		if err := board.AddCardToColumn(todo.ID(), card); err != nil {
			panic(err)
		}
	}
	return board.Snapshot()
}
