package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	domainerrors "github.com/tasktiles/tasktiles-server/internal/errors"
	"github.com/tasktiles/tasktiles-server/internal/id"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

// ListService handles list CRUD and board-scoped reordering.
type ListService struct {
	store  store.Store
	logger *slog.Logger
}

// NewListService creates a new list service.
func NewListService(st store.Store, logger *slog.Logger) *ListService {
	return &ListService{store: st, logger: logger}
}

// CreateListRequest contains new list data.
type CreateListRequest struct {
	BoardID string `json:"board_id" validate:"required"`
	Title   string `json:"title" validate:"required,min=1,max=200"`
}

// RenameListRequest contains the new title.
type RenameListRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// MoveListRequest contains the target position. -1 means the end.
type MoveListRequest struct {
	Position int `json:"position" validate:"gte=-1"`
}

// DeleteListResponse reports what a list delete removed.
type DeleteListResponse struct {
	ListID       string `json:"list_id"`
	CardsRemoved int    `json:"cards_removed"`
}

// CreateList appends a list at the end of a board.
func (s *ListService) CreateList(ctx context.Context, userID string, req CreateListRequest) (*domain.List, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if _, err := authorizeBoard(ctx, s.store, req.BoardID, userID); err != nil {
		return nil, err
	}

	list := &domain.List{
		BoardID: req.BoardID,
		Title:   req.Title,
	}
	list.ID = id.MustGenerate("lst")
	list.InitTimestamps()

	if err := s.store.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}

	s.logger.Info("List created", "list_id", list.ID, "board_id", req.BoardID, "position", list.Position)
	return list, nil
}

// GetList loads a list the user can access.
func (s *ListService) GetList(ctx context.Context, listID, userID string) (*domain.List, error) {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	if _, err := authorizeBoard(ctx, s.store, list.BoardID, userID); err != nil {
		return nil, err
	}
	return list, nil
}

// RenameList changes a list's title.
func (s *ListService) RenameList(ctx context.Context, listID, userID string, req RenameListRequest) (*domain.List, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	list, err := s.GetList(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.RenameList(ctx, listID, req.Title); err != nil {
		return nil, fmt.Errorf("rename list: %w", err)
	}
	list.Title = req.Title
	return list, nil
}

// MoveList reorders a list within its board. Out-of-range positions clamp
// to the last slot.
func (s *ListService) MoveList(ctx context.Context, listID, userID string, req MoveListRequest) (*domain.List, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.GetList(ctx, listID, userID); err != nil {
		return nil, err
	}

	if err := s.store.MoveList(ctx, listID, req.Position); err != nil {
		return nil, fmt.Errorf("move list: %w", err)
	}

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("reload list: %w", err)
	}
	return list, nil
}

// DeleteList removes a list and its cards, reporting how many cards went
// with it.
func (s *ListService) DeleteList(ctx context.Context, listID, userID string) (*DeleteListResponse, error) {
	if _, err := s.GetList(ctx, listID, userID); err != nil {
		return nil, err
	}

	removed, err := s.store.DeleteList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("delete list: %w", err)
	}

	s.logger.Info("List deleted", "list_id", listID, "cards_removed", removed)
	return &DeleteListResponse{ListID: listID, CardsRemoved: removed}, nil
}
