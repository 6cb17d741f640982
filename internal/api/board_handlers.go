package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasktiles/tasktiles-server/internal/http/response"
	"github.com/tasktiles/tasktiles-server/internal/service"
)

// handleCreateBoard creates a new board owned by the caller.
func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CreateBoardRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	board, err := s.boardService.CreateBoard(ctx, getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, board, s.logger)
}

// handleListBoards returns every board the caller owns or is a member of.
func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	boards, err := s.boardService.ListBoards(ctx, getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, boards, s.logger)
}

// handleGetBoard returns a board with its lists and cards in order.
func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshot, err := s.boardService.GetBoard(ctx, chi.URLParam(r, "id"), getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, snapshot, s.logger)
}

// handleUpdateBoard updates board title and description. Owner only.
func (s *Server) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.UpdateBoardRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	board, err := s.boardService.UpdateBoard(ctx, chi.URLParam(r, "id"), getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, board, s.logger)
}

// handleDeleteBoard deletes a board and everything on it. Owner only.
func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.boardService.DeleteBoard(ctx, chi.URLParam(r, "id"), getUserID(ctx)); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleListMembers returns a board's membership roster.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	members, err := s.invitationService.ListMembers(ctx, chi.URLParam(r, "id"), getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, members, s.logger)
}

// handleRemoveMember removes a member from a board. The owner can remove
// anyone; a member can only remove themselves.
func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := s.invitationService.RemoveMember(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "userID"), getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
