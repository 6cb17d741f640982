package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/tasktiles/tasktiles-server/internal/assistant"
	"github.com/tasktiles/tasktiles-server/internal/http/response"
)

// handleAssistantChat runs one conversational turn. History travels with the
// request; the server keeps no conversational state between turns.
func (s *Server) handleAssistantChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assistant.ChatRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	s.logger.Debug("Assistant chat turn", "username", getUsername(ctx), "board_id", req.BoardID)

	resp, err := s.dispatcher.Chat(ctx, getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}
