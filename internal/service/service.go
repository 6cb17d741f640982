// Package service implements the application's business operations on top of
// the store. Services validate input, enforce board access, and translate
// store errors into domain errors.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	domainerrors "github.com/tasktiles/tasktiles-server/internal/errors"
	"github.com/tasktiles/tasktiles-server/internal/store"
	"github.com/tasktiles/tasktiles-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// authorizeBoard loads a board and verifies the user may access it. A board
// that exists but is not accessible comes back as NotFound, so callers
// cannot probe for other users' board IDs.
func authorizeBoard(ctx context.Context, s store.Store, boardID, userID string) (*domain.Board, error) {
	board, err := s.GetBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("board not found")
		}
		return nil, fmt.Errorf("get board: %w", err)
	}

	if board.IsOwnedBy(userID) {
		return board, nil
	}
	member, err := s.IsMember(ctx, boardID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return nil, domainerrors.NotFound("board not found")
	}
	return board, nil
}

// authorizeBoardOwner is authorizeBoard restricted to the owner. Members get
// Forbidden since they already know the board exists.
func authorizeBoardOwner(ctx context.Context, s store.Store, boardID, userID string) (*domain.Board, error) {
	board, err := authorizeBoard(ctx, s, boardID, userID)
	if err != nil {
		return nil, err
	}
	if !board.IsOwnedBy(userID) {
		return nil, domainerrors.Forbidden("only the board owner can do that")
	}
	return board, nil
}
