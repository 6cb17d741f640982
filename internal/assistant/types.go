// Package assistant implements the conversational command layer: a language
// model classifies a chat message into one of a fixed set of intents, free
// text entity names are resolved against the user's boards, and the matching
// domain operation runs only once every reference is unambiguous.
package assistant

// Conversation roles accepted in Turn.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior message in the conversation. History is supplied by the
// caller on every request; the server holds no conversational state.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// ChatRequest is one conversational command.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
	History []Turn `json:"history" validate:"max=50"`
	// BoardID optionally scopes resolution to a current board.
	BoardID string `json:"board_id"`
}

// ChatResponse is the assistant's answer: a natural-language reply, a
// machine-readable action tag, and any structured payload the action
// produced.
type ChatResponse struct {
	Reply  string `json:"reply"`
	Action string `json:"action,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Action tags carried on ChatResponse.
const (
	ActionClarification = "clarification"
	ActionBoardsListed  = "boards_listed"
	ActionTodayListed   = "today_tasks_listed"
	ActionBoardCreated  = "board_created"
	ActionListCreated   = "list_created"
	ActionListDeleted   = "list_deleted"
	ActionCardCreated   = "card_created"
	ActionCardMoved     = "card_moved"
	ActionCardDeleted   = "card_deleted"
	ActionBoardInfo     = "board_info"
	ActionOptionsListed = "options_listed"
	ActionCommandFailed = "command_failed"
)

// commandState tracks a command through its lifecycle. A command never
// reaches stateExecuting with unresolved entities; ambiguity terminates the
// turn at stateClarification.
type commandState string

const (
	stateReceived      commandState = "received"
	stateResolving     commandState = "resolving"
	stateClarification commandState = "clarification"
	stateResolved      commandState = "resolved"
	stateExecuting     commandState = "executing"
	stateSucceeded     commandState = "succeeded"
	stateFailed        commandState = "failed"
)
