package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasktiles/tasktiles-server/internal/http/response"
	"github.com/tasktiles/tasktiles-server/internal/service"
)

// handleCreateList appends a list at the end of a board.
func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CreateListRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	list, err := s.listService.CreateList(ctx, getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, list, s.logger)
}

// handleGetList returns a single list.
func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := s.listService.GetList(ctx, chi.URLParam(r, "id"), getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, list, s.logger)
}

// handleRenameList changes a list's title.
func (s *Server) handleRenameList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.RenameListRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	list, err := s.listService.RenameList(ctx, chi.URLParam(r, "id"), getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, list, s.logger)
}

// handleMoveList repositions a list among its board's lists.
func (s *Server) handleMoveList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.MoveListRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	list, err := s.listService.MoveList(ctx, chi.URLParam(r, "id"), getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, list, s.logger)
}

// handleDeleteList deletes a list and every card on it, reporting how many
// cards went with it.
func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := s.listService.DeleteList(ctx, chi.URLParam(r, "id"), getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
