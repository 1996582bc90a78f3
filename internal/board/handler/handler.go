package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/board/models"
	id "taskboard/pkg/domain"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/httputil"
	"taskboard/pkg/requestcontext"
)

// Service defines the board operations exposed over HTTP.
type Service interface {
	CreateBoard(ctx context.Context, userID id.UserID, req *models.CreateBoardRequest) (models.BoardSnapshot, error)
	ListBoards(ctx context.Context, userID id.UserID) ([]models.BoardSnapshot, error)
	GetBoard(ctx context.Context, userID id.UserID, boardID id.BoardID) (models.BoardSnapshot, error)
	UpdateBoardTitle(ctx context.Context, userID id.UserID, req *models.UpdateBoardTitleRequest) (models.BoardSnapshot, error)
	AddColumn(ctx context.Context, userID id.UserID, req *models.AddColumnRequest) (models.BoardSnapshot, id.ColumnID, error)
	UpdateColumnTitle(ctx context.Context, userID id.UserID, req *models.UpdateColumnTitleRequest) (models.BoardSnapshot, error)
	UpdateColumnPosition(ctx context.Context, userID id.UserID, req *models.UpdateColumnPositionRequest) (models.BoardSnapshot, error)
	AddCard(ctx context.Context, userID id.UserID, req *models.AddCardRequest) (models.BoardSnapshot, id.CardID, error)
	UpdateCardPriority(ctx context.Context, userID id.UserID, req *models.UpdateCardPriorityRequest) (models.BoardSnapshot, error)
	MoveCard(ctx context.Context, userID id.UserID, req *models.MoveCardRequest) (models.BoardSnapshot, error)
}

// Handler wires the board endpoints to the board service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the board routes. The router must already carry the
// middleware that puts the caller's user id in the request context.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/boards", func(r chi.Router) {
		r.Get("/", h.HandleListBoards)
		r.Post("/", h.HandleCreateBoard)
		r.Get("/{boardID}", h.HandleGetBoard)
		r.Put("/title", h.HandleUpdateBoardTitle)
		r.Post("/columns", h.HandleAddColumn)
		r.Put("/columns/title", h.HandleUpdateColumnTitle)
		r.Put("/columns/position-in-board", h.HandleUpdateColumnPosition)
		r.Post("/cards", h.HandleAddCard)
		r.Put("/cards/priority", h.HandleUpdateCardPriority)
		r.Put("/cards/move-to-column", h.HandleMoveCard)
	})
}

// HandleListBoards handles GET /api/boards.
func (h *Handler) HandleListBoards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	boards, err := h.service.ListBoards(ctx, userID)
	if err != nil {
		h.fail(w, ctx, "list boards", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, boards)
}

// HandleGetBoard handles GET /api/boards/{boardID}. A malformed id is
// reported the same way as an unknown board.
func (h *Handler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	boardID, err := id.ParseBoardID(chi.URLParam(r, "boardID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, dErrors.NotFound("Board")))
		return
	}
	board, err := h.service.GetBoard(ctx, userID, boardID)
	if err != nil {
		h.fail(w, ctx, "get board", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, board)
}

// HandleCreateBoard handles POST /api/boards.
func (h *Handler) HandleCreateBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.CreateBoardRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	board, err := h.service.CreateBoard(ctx, userID, req)
	if err != nil {
		h.fail(w, ctx, "create board", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, board)
}

// HandleUpdateBoardTitle handles PUT /api/boards/title.
func (h *Handler) HandleUpdateBoardTitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateBoardTitleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	board, err := h.service.UpdateBoardTitle(ctx, userID, req)
	h.respond(w, ctx, "update board title", board, err)
}

// HandleAddColumn handles POST /api/boards/columns.
func (h *Handler) HandleAddColumn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AddColumnRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	board, columnID, err := h.service.AddColumn(ctx, userID, req)
	if err != nil {
		h.fail(w, ctx, "add column", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, AddColumnResponse{ColumnID: columnID, Board: board})
}

// HandleUpdateColumnTitle handles PUT /api/boards/columns/title.
func (h *Handler) HandleUpdateColumnTitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateColumnTitleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	board, err := h.service.UpdateColumnTitle(ctx, userID, req)
	h.respond(w, ctx, "update column title", board, err)
}

// HandleUpdateColumnPosition handles PUT /api/boards/columns/position-in-board.
func (h *Handler) HandleUpdateColumnPosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateColumnPositionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	board, err := h.service.UpdateColumnPosition(ctx, userID, req)
	h.respond(w, ctx, "update column position", board, err)
}

// HandleAddCard handles POST /api/boards/cards.
func (h *Handler) HandleAddCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AddCardRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	board, cardID, err := h.service.AddCard(ctx, userID, req)
	if err != nil {
		h.fail(w, ctx, "add card", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, AddCardResponse{CardID: cardID, Board: board})
}

// HandleUpdateCardPriority handles PUT /api/boards/cards/priority.
func (h *Handler) HandleUpdateCardPriority(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateCardPriorityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	board, err := h.service.UpdateCardPriority(ctx, userID, req)
	h.respond(w, ctx, "update card priority", board, err)
}

// HandleMoveCard handles PUT /api/boards/cards/move-to-column.
func (h *Handler) HandleMoveCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.MoveCardRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	board, err := h.service.MoveCard(ctx, userID, req)
	h.respond(w, ctx, "move card", board, err)
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) respond(w http.ResponseWriter, ctx context.Context, action string, board models.BoardSnapshot, err error) {
	if err != nil {
		h.fail(w, ctx, action, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, board)
}

func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, action string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, action+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", requestcontext.UserID(ctx).String(),
		"error", err,
	)
	httputil.WriteError(w, err)
}
