package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/id"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

// BoardService handles board CRUD and full board snapshots.
type BoardService struct {
	store  store.Store
	logger *slog.Logger
}

// NewBoardService creates a new board service.
func NewBoardService(st store.Store, logger *slog.Logger) *BoardService {
	return &BoardService{store: st, logger: logger}
}

// CreateBoardRequest contains new board data. Titles need not be unique.
type CreateBoardRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateBoardRequest contains editable board fields.
type UpdateBoardRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// ListSnapshot is a list with its cards in position order.
type ListSnapshot struct {
	*domain.List
	Cards []*domain.Card `json:"cards"`
}

// BoardSnapshot is a board with its lists and cards fully ordered.
type BoardSnapshot struct {
	*domain.Board
	Lists []*ListSnapshot `json:"lists"`
}

// CreateBoard creates a board owned by the user.
func (s *BoardService) CreateBoard(ctx context.Context, userID string, req CreateBoardRequest) (*domain.Board, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	board := &domain.Board{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     userID,
	}
	board.ID = id.MustGenerate("brd")
	board.InitTimestamps()

	if err := s.store.CreateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	s.logger.Info("Board created", "board_id", board.ID, "owner_id", userID)
	return board, nil
}

// GetBoard returns the full board snapshot: lists in position order, each
// with its cards in position order.
func (s *BoardService) GetBoard(ctx context.Context, boardID, userID string) (*BoardSnapshot, error) {
	board, err := authorizeBoard(ctx, s.store, boardID, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, board)
}

// ListBoards returns the boards the user owns or is a member of.
func (s *BoardService) ListBoards(ctx context.Context, userID string) ([]*domain.Board, error) {
	boards, err := s.store.ListAccessibleBoards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return boards, nil
}

// UpdateBoard edits board title and description. Owner only.
func (s *BoardService) UpdateBoard(ctx context.Context, boardID, userID string, req UpdateBoardRequest) (*domain.Board, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	board, err := authorizeBoardOwner(ctx, s.store, boardID, userID)
	if err != nil {
		return nil, err
	}

	board.Title = req.Title
	board.Description = req.Description
	board.Touch()
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("update board: %w", err)
	}
	return board, nil
}

// DeleteBoard removes a board and everything under it. Owner only.
func (s *BoardService) DeleteBoard(ctx context.Context, boardID, userID string) error {
	if _, err := authorizeBoardOwner(ctx, s.store, boardID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteBoard(ctx, boardID); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	s.logger.Info("Board deleted", "board_id", boardID, "user_id", userID)
	return nil
}

func (s *BoardService) snapshot(ctx context.Context, board *domain.Board) (*BoardSnapshot, error) {
	lists, err := s.store.ListListsByBoard(ctx, board.ID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	cards, err := s.store.ListCardsByBoard(ctx, board.ID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	byList := make(map[string][]*domain.Card, len(lists))
	for _, c := range cards {
		byList[c.ListID] = append(byList[c.ListID], c)
	}

	snap := &BoardSnapshot{Board: board, Lists: make([]*ListSnapshot, 0, len(lists))}
	for _, l := range lists {
		cs := byList[l.ID]
		if cs == nil {
			cs = []*domain.Card{}
		}
		snap.Lists = append(snap.Lists, &ListSnapshot{List: l, Cards: cs})
	}
	return snap, nil
}
