package assistant

import "context"

// Decision is the language model's classification of one message: either a
// direct natural-language reply, or an intent from the catalog with its
// extracted slot values.
type Decision struct {
	Reply  string
	Intent string
	Slots  map[string]any
}

// DecideRequest carries everything the model sees for one turn.
type DecideRequest struct {
	System  string
	History []Turn
	Message string
}

// LLM is the language-model boundary. The assistant supplies the intent
// catalog and consumes the model's choice; it never interprets free text
// itself.
type LLM interface {
	Decide(ctx context.Context, req DecideRequest) (*Decision, error)
}
