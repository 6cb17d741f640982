package api

import (
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tasktiles/tasktiles-server/internal/http/response"
	"github.com/tasktiles/tasktiles-server/internal/service"
)

// handleCreateCard appends a card to a list.
func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CreateCardRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	card, err := s.cardService.CreateCard(ctx, getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, card, s.logger)
}

// handleGetCard returns a single card with its contributors.
func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	card, err := s.cardService.GetCard(ctx, chi.URLParam(r, "id"), getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, card, s.logger)
}

// handleUpdateCard edits card fields and records the caller as contributor.
func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.UpdateCardRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	card, err := s.cardService.UpdateCard(ctx, chi.URLParam(r, "id"), getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, card, s.logger)
}

// handleMoveCard moves a card within its list or to another list on the
// same board.
func (s *Server) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.MoveCardRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	card, err := s.cardService.MoveCard(ctx, chi.URLParam(r, "id"), getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, card, s.logger)
}

// handleDeleteCard removes a card, recording the caller as contributor
// before removal.
func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.cardService.DeleteCard(ctx, chi.URLParam(r, "id"), getUserID(ctx)); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleTodayTasks returns the caller's tasks for today across all
// accessible boards.
func (s *Server) handleTodayTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tasks, err := s.cardService.TodayTasks(ctx, getUserID(ctx), time.Now())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tasks, s.logger)
}
