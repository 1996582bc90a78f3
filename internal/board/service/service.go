package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"taskboard/internal/audit"
	"taskboard/internal/board/metrics"
	"taskboard/internal/board/models"
	id "taskboard/pkg/domain"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/sentinel"
	"taskboard/pkg/requestcontext"
)

// Store persists board snapshots with optimistic concurrency. Save must
// reject a snapshot whose Version is not the stored version with
// sentinel.ErrConflict and return the snapshot as persisted (version bumped).
type Store interface {
	Create(ctx context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error)
	FindByID(ctx context.Context, boardID id.BoardID) (models.BoardSnapshot, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]models.BoardSnapshot, error)
	Save(ctx context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	defaultMaxConflictRetries = 2
	tracerName                = "taskboard/internal/board/service"
)

// Service handles board commands: validate, load the caller's board, apply
// one aggregate method and save. Version conflicts reload and re-apply the
// command up to maxConflictRetries times.
type Service struct {
	store              Store
	logger             *slog.Logger
	auditPublisher     AuditPublisher
	metrics            *metrics.Metrics
	tracer             trace.Tracer
	maxConflictRetries int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithMaxConflictRetries bounds how often a command is re-applied after a
// version conflict. Zero disables retrying.
func WithMaxConflictRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxConflictRetries = n
		}
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("board store is required")
	}
	s := &Service{
		store:              store,
		logger:             slog.Default(),
		tracer:             otel.Tracer(tracerName),
		maxConflictRetries: defaultMaxConflictRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type request interface {
	Normalize()
	Validate() error
}

func prepare(req request) error {
	req.Normalize()
	return req.Validate()
}

// boardRequest is a command addressed to one existing board. ParsedBoardID
// is only meaningful after a successful Validate.
type boardRequest interface {
	request
	ParsedBoardID() id.BoardID
}

// mutation applies one aggregate method and describes it for the audit trail.
type mutation func(board *models.Board) (audit.Event, error)

// CreateBoard creates an empty board owned by userID.
func (s *Service) CreateBoard(ctx context.Context, userID id.UserID, req *models.CreateBoardRequest) (models.BoardSnapshot, error) {
	var created models.BoardSnapshot
	err := s.observe(ctx, "CreateBoard", func() id.BoardID { return created.ID }, func(ctx context.Context) error {
		if err := prepare(req); err != nil {
			return err
		}
		board, err := models.NewBoard(id.NewBoardID(), req.BoardTitle, userID)
		if err != nil {
			return err
		}
		created, err = s.store.Create(ctx, board.Snapshot())
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, dErrors.CommitFailed)
		}
		if s.metrics != nil {
			s.metrics.IncrementBoardsCreated()
		}
		s.emitAudit(ctx, audit.Event{
			UserID:  userID,
			BoardID: created.ID,
			Action:  audit.ActionBoardCreated,
			Subject: created.ID.String(),
		})
		return nil
	})
	if err != nil {
		return models.BoardSnapshot{}, err
	}
	return created, nil
}

// ListBoards returns every board owned by userID, ordered by title.
func (s *Service) ListBoards(ctx context.Context, userID id.UserID) ([]models.BoardSnapshot, error) {
	var boards []models.BoardSnapshot
	err := s.observe(ctx, "ListBoards", nil, func(ctx context.Context) error {
		var err error
		boards, err = s.store.ListByUser(ctx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list boards")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return boards, nil
}

// GetBoard returns one board with columns ordered by position and cards by
// priority. Boards owned by someone else are reported as not found.
func (s *Service) GetBoard(ctx context.Context, userID id.UserID, boardID id.BoardID) (models.BoardSnapshot, error) {
	var snap models.BoardSnapshot
	err := s.observe(ctx, "GetBoard", func() id.BoardID { return boardID }, func(ctx context.Context) error {
		board, err := s.load(ctx, userID, boardID)
		if err != nil {
			return err
		}
		snap = board.Snapshot()
		return nil
	})
	if err != nil {
		return models.BoardSnapshot{}, err
	}
	return snap, nil
}

func (s *Service) UpdateBoardTitle(ctx context.Context, userID id.UserID, req *models.UpdateBoardTitleRequest) (models.BoardSnapshot, error) {
	return s.mutate(ctx, "UpdateBoardTitle", userID, req, func(board *models.Board) (audit.Event, error) {
		if err := board.UpdateTitle(req.NewBoardTitle); err != nil {
			return audit.Event{}, err
		}
		return audit.Event{Action: audit.ActionBoardTitleUpdated, Subject: board.ID().String()}, nil
	})
}

// AddColumn appends a new column and returns the board and the column id.
func (s *Service) AddColumn(ctx context.Context, userID id.UserID, req *models.AddColumnRequest) (models.BoardSnapshot, id.ColumnID, error) {
	columnID := id.NewColumnID()
	snap, err := s.mutate(ctx, "AddColumn", userID, req, func(board *models.Board) (audit.Event, error) {
		column, err := models.NewColumn(columnID, req.ColumnTitle)
		if err != nil {
			return audit.Event{}, err
		}
		if err := board.AddColumn(column); err != nil {
			return audit.Event{}, err
		}
		return audit.Event{Action: audit.ActionColumnAdded, Subject: columnID.String()}, nil
	})
	if err != nil {
		return models.BoardSnapshot{}, id.ColumnID{}, err
	}
	return snap, columnID, nil
}

func (s *Service) UpdateColumnTitle(ctx context.Context, userID id.UserID, req *models.UpdateColumnTitleRequest) (models.BoardSnapshot, error) {
	return s.mutate(ctx, "UpdateColumnTitle", userID, req, func(board *models.Board) (audit.Event, error) {
		columnID := req.ParsedColumnID()
		if err := board.UpdateColumnTitle(columnID, req.NewColumnTitle); err != nil {
			return audit.Event{}, err
		}
		return audit.Event{Action: audit.ActionColumnTitleUpdated, Subject: columnID.String()}, nil
	})
}

func (s *Service) UpdateColumnPosition(ctx context.Context, userID id.UserID, req *models.UpdateColumnPositionRequest) (models.BoardSnapshot, error) {
	return s.mutate(ctx, "UpdateColumnPosition", userID, req, func(board *models.Board) (audit.Event, error) {
		columnID := req.ParsedColumnID()
		if err := board.UpdateColumnPositionInBoard(columnID, req.NewColumnPositionInBoard); err != nil {
			return audit.Event{}, err
		}
		return audit.Event{Action: audit.ActionColumnMoved, Subject: columnID.String()}, nil
	})
}

// AddCard appends a new card to a column and returns the board and the card id.
func (s *Service) AddCard(ctx context.Context, userID id.UserID, req *models.AddCardRequest) (models.BoardSnapshot, id.CardID, error) {
	cardID := id.NewCardID()
	snap, err := s.mutate(ctx, "AddCard", userID, req, func(board *models.Board) (audit.Event, error) {
		columnID := req.ParsedColumnID()
		card, err := models.NewCard(cardID, req.CardTitle)
		if err != nil {
			return audit.Event{}, err
		}
		if err := board.AddCardToColumn(columnID, card); err != nil {
			return audit.Event{}, err
		}
		return audit.Event{Action: audit.ActionCardAdded, Subject: cardID.String()}, nil
	})
	if err != nil {
		return models.BoardSnapshot{}, id.CardID{}, err
	}
	return snap, cardID, nil
}

func (s *Service) UpdateCardPriority(ctx context.Context, userID id.UserID, req *models.UpdateCardPriorityRequest) (models.BoardSnapshot, error) {
	return s.mutate(ctx, "UpdateCardPriority", userID, req, func(board *models.Board) (audit.Event, error) {
		columnID, cardID := req.ParsedColumnID(), req.ParsedCardID()
		if err := board.UpdateCardPriorityInColumn(columnID, cardID, req.NewCardPriorityInColumn); err != nil {
			return audit.Event{}, err
		}
		return audit.Event{Action: audit.ActionCardPriorityUpdated, Subject: cardID.String()}, nil
	})
}

func (s *Service) MoveCard(ctx context.Context, userID id.UserID, req *models.MoveCardRequest) (models.BoardSnapshot, error) {
	return s.mutate(ctx, "MoveCard", userID, req, func(board *models.Board) (audit.Event, error) {
		cardID := req.ParsedCardID()
		from, to := req.ParsedFromColumnID(), req.ParsedToColumnID()
		if err := board.MoveCardBetweenColumns(cardID, from, to, req.CardPriorityInColumn); err != nil {
			return audit.Event{}, err
		}
		return audit.Event{Action: audit.ActionCardMoved, Subject: cardID.String()}, nil
	})
}

// mutate validates req, then runs load, apply and save, re-running the last
// three when the save hits a version conflict. apply must be safe to call
// again on a freshly loaded board.
func (s *Service) mutate(ctx context.Context, command string, userID id.UserID, req boardRequest, apply mutation) (models.BoardSnapshot, error) {
	var (
		saved   models.BoardSnapshot
		boardID id.BoardID
	)
	err := s.observe(ctx, command, func() id.BoardID { return boardID }, func(ctx context.Context) error {
		if err := prepare(req); err != nil {
			return err
		}
		boardID = req.ParsedBoardID()
		for attempt := 0; ; attempt++ {
			board, err := s.load(ctx, userID, boardID)
			if err != nil {
				return err
			}
			event, err := apply(board)
			if err != nil {
				return err
			}

			saved, err = s.store.Save(ctx, board.Snapshot())
			switch {
			case err == nil:
				event.UserID = userID
				event.BoardID = boardID
				s.emitAudit(ctx, event)
				return nil
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, dErrors.NotFound("Board"))
			case !errors.Is(err, sentinel.ErrConflict):
				return dErrors.Wrap(err, dErrors.CodeInternal, dErrors.CommitFailed)
			case attempt >= s.maxConflictRetries:
				return dErrors.Wrap(err, dErrors.CodeConflict, "The board was changed by another request. Please, try again.")
			}

			if s.metrics != nil {
				s.metrics.IncrementConflictRetry()
			}
			s.logger.WarnContext(ctx, "board version conflict, retrying",
				"command", command,
				"board_id", boardID.String(),
				"attempt", attempt+1,
			)
		}
	})
	if err != nil {
		return models.BoardSnapshot{}, err
	}
	return saved, nil
}

// load fetches and rebuilds the caller's board. A board owned by someone else
// is indistinguishable from a missing one.
func (s *Service) load(ctx context.Context, userID id.UserID, boardID id.BoardID) (*models.Board, error) {
	snap, err := s.store.FindByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, dErrors.NotFound("Board"))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load board")
	}
	if snap.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, dErrors.NotFound("Board"))
	}
	board, err := models.Restore(snap)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored board is inconsistent")
	}
	return board, nil
}

// observe wraps a command in a span and records its outcome, validation
// rejections included. boardOf, when set, is read after fn returns so
// commands that only learn their board while running still report it.
func (s *Service) observe(ctx context.Context, command string, boardOf func() id.BoardID, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "board."+command)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	var boardID id.BoardID
	if boardOf != nil {
		boardID = boardOf()
	}
	if !boardID.IsNil() {
		span.SetAttributes(attribute.String("board.id", boardID.String()))
	}

	outcome := "ok"
	if err != nil {
		code := dErrors.CodeOf(err)
		outcome = string(code)
		span.SetAttributes(attribute.String("error.code", outcome))
		if code == dErrors.CodeInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.ErrorContext(ctx, "board command failed",
				"command", command,
				"board_id", boardID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		} else {
			s.logger.DebugContext(ctx, "board command rejected",
				"command", command,
				"board_id", boardID.String(),
				"code", outcome,
			)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveCommand(command, outcome, start)
	}
	return err
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	s.logger.InfoContext(ctx, string(event.Action),
		"board_id", event.BoardID.String(),
		"subject", event.Subject,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"board_id", event.BoardID.String(),
			"error", err,
		)
	}
}
