package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasktiles/tasktiles-server/internal/http/response"
	"github.com/tasktiles/tasktiles-server/internal/service"
)

// handleCreateInvitation invites a user to a board by username. Owner only.
func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CreateInvitationRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	invitation, err := s.invitationService.Invite(ctx, getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, invitation, s.logger)
}

// handleListSentInvitations returns invitations the caller has sent.
func (s *Server) handleListSentInvitations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invitations, err := s.invitationService.ListSent(ctx, getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, invitations, s.logger)
}

// handleListReceivedInvitations returns invitations addressed to the caller.
func (s *Server) handleListReceivedInvitations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invitations, err := s.invitationService.ListReceived(ctx, getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, invitations, s.logger)
}

// handleAcceptInvitation accepts a pending invitation, making the caller a
// board member.
func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invitation, err := s.invitationService.Accept(ctx, chi.URLParam(r, "id"), getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, invitation, s.logger)
}

// handleDeclineInvitation declines a pending invitation.
func (s *Server) handleDeclineInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invitation, err := s.invitationService.Decline(ctx, chi.URLParam(r, "id"), getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, invitation, s.logger)
}
