//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"taskboard/internal/audit"
	id "taskboard/pkg/domain"
	"taskboard/pkg/requestcontext"
	"taskboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
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
	s.store = audit.NewPostgresStore(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "board_audit_events"))
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithClientIP(ctx, "198.51.100.4")
	publisher := audit.NewPublisher(s.store)

	boardID := id.NewBoardID()
	userID := id.UserID(uuid.New())
	columnID := id.NewColumnID().String()
	s.Require().NoError(publisher.Emit(ctx, audit.Event{
		UserID: userID, BoardID: boardID, Action: audit.ActionBoardCreated, Subject: boardID.String(),
	}))
	s.Require().NoError(publisher.Emit(ctx, audit.Event{
		UserID: userID, BoardID: boardID, Action: audit.ActionColumnAdded, Subject: columnID,
	}))
	s.Require().NoError(publisher.Emit(ctx, audit.Event{
		UserID: userID, BoardID: id.NewBoardID(), Action: audit.ActionBoardCreated,
	}))

	events, err := publisher.List(ctx, boardID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionBoardCreated, events[0].Action)
	s.Equal(audit.ActionColumnAdded, events[1].Action)
	s.Equal(columnID, events[1].Subject)
	s.Equal(userID, events[1].UserID)
	s.Equal("req-42", events[1].RequestID)
	s.Equal("198.51.100.4", events[1].ClientIP)
	s.True(at.Equal(events[1].Timestamp))
}
