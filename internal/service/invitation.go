package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	domainerrors "github.com/tasktiles/tasktiles-server/internal/errors"
	"github.com/tasktiles/tasktiles-server/internal/id"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

// InvitationService handles board sharing: invitations and memberships.
type InvitationService struct {
	store  store.Store
	logger *slog.Logger
}

// NewInvitationService creates a new invitation service.
func NewInvitationService(st store.Store, logger *slog.Logger) *InvitationService {
	return &InvitationService{store: st, logger: logger}
}

// CreateInvitationRequest invites a user to a board by username.
type CreateInvitationRequest struct {
	BoardID  string `json:"board_id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Message  string `json:"message" validate:"max=1000"`
}

// Invite creates a pending invitation. Only the board owner can invite, and
// at most one invitation per (board, invitee) may be pending at a time.
func (s *InvitationService) Invite(ctx context.Context, inviterID string, req CreateInvitationRequest) (*domain.Invitation, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if _, err := authorizeBoardOwner(ctx, s.store, req.BoardID, inviterID); err != nil {
		return nil, err
	}

	invitee, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("no such user")
		}
		return nil, fmt.Errorf("lookup invitee: %w", err)
	}
	if invitee.ID == inviterID {
		return nil, domainerrors.Validation("you already own this board")
	}

	member, err := s.store.IsMember(ctx, req.BoardID, invitee.ID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if member {
		return nil, domainerrors.AlreadyExists("user is already a member of this board")
	}

	inv := &domain.Invitation{
		BoardID:   req.BoardID,
		InviterID: inviterID,
		InviteeID: invitee.ID,
		Message:   req.Message,
		Status:    domain.InvitationPending,
	}
	inv.ID = id.MustGenerate("inv")
	inv.InitTimestamps()

	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("an invitation for this user is already pending")
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.logger.Info("Invitation sent",
		"invitation_id", inv.ID,
		"board_id", req.BoardID,
		"invitee_id", invitee.ID,
	)
	return inv, nil
}

// ListSent returns invitations the user has sent.
func (s *InvitationService) ListSent(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return s.store.ListInvitationsByInviter(ctx, userID)
}

// ListReceived returns invitations addressed to the user.
func (s *InvitationService) ListReceived(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return s.store.ListInvitationsByInvitee(ctx, userID)
}

// Accept flips a pending invitation to accepted and adds the invitee as a
// board member, atomically.
func (s *InvitationService) Accept(ctx context.Context, invitationID, userID string) (*domain.Invitation, error) {
	inv, err := s.loadOwnInvitation(ctx, invitationID, userID)
	if err != nil {
		return nil, err
	}
	if !inv.Respond(domain.InvitationAccepted) {
		return nil, domainerrors.InvalidState("invitation has already been answered")
	}

	m := &domain.Membership{
		BoardID:  inv.BoardID,
		UserID:   userID,
		Role:     domain.BoardRoleMember,
		JoinedAt: time.Now(),
	}
	m.ID = id.MustGenerate("mbr")
	m.InitTimestamps()

	if err := s.store.AcceptInvitation(ctx, inv, m); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("you are already a member of this board")
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}

	s.logger.Info("Invitation accepted", "invitation_id", inv.ID, "board_id", inv.BoardID, "user_id", userID)
	return inv, nil
}

// Decline flips a pending invitation to declined. No membership is created.
func (s *InvitationService) Decline(ctx context.Context, invitationID, userID string) (*domain.Invitation, error) {
	inv, err := s.loadOwnInvitation(ctx, invitationID, userID)
	if err != nil {
		return nil, err
	}
	if !inv.Respond(domain.InvitationDeclined) {
		return nil, domainerrors.InvalidState("invitation has already been answered")
	}

	if err := s.store.UpdateInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("decline invitation: %w", err)
	}
	return inv, nil
}

// ListMembers returns the board's non-owner collaborators.
func (s *InvitationService) ListMembers(ctx context.Context, boardID, userID string) ([]*domain.Membership, error) {
	if _, err := authorizeBoard(ctx, s.store, boardID, userID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, boardID)
}

// RemoveMember removes a collaborator from a board. The owner can remove
// anyone; a member can only remove themselves (leave).
func (s *InvitationService) RemoveMember(ctx context.Context, boardID, memberID, userID string) error {
	board, err := authorizeBoard(ctx, s.store, boardID, userID)
	if err != nil {
		return err
	}
	if !board.IsOwnedBy(userID) && memberID != userID {
		return domainerrors.Forbidden("only the board owner can remove other members")
	}
	if memberID == board.OwnerID {
		return domainerrors.InvalidState("the board owner cannot be removed")
	}

	if err := s.store.DeleteMembership(ctx, boardID, memberID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("membership not found")
		}
		return fmt.Errorf("remove member: %w", err)
	}

	s.logger.Info("Member removed", "board_id", boardID, "member_id", memberID, "by", userID)
	return nil
}

// loadOwnInvitation loads an invitation addressed to the user. Anyone
// else's invitation surfaces as NotFound.
func (s *InvitationService) loadOwnInvitation(ctx context.Context, invitationID, userID string) (*domain.Invitation, error) {
	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("invitation not found")
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if inv.InviteeID != userID {
		return nil, domainerrors.NotFound("invitation not found")
	}
	return inv, nil
}
