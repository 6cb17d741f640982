package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	domainerrors "github.com/tasktiles/tasktiles-server/internal/errors"
)

const defaultModel = "gemini-2.5-flash"

// Gemini classifies messages with the Gemini API using function calling. Each
// catalog intent is exposed as a function declaration; when the model picks
// one, the call's arguments become the decision's slots.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGemini builds a Gemini-backed classifier. The model name may be empty,
// in which case a default is used.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Gemini{
		client: client,
		model:  model,
		logger: logger.With(slog.String("component", "gemini")),
	}, nil
}

// historyContents maps conversation turns onto Gemini content entries.
// Assistant turns become model-role content, everything else user-role.
func historyContents(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents
}

func (g *Gemini) Decide(ctx context.Context, req DecideRequest) (*Decision, error) {
	contents := append(historyContents(req.History), genai.NewContentFromText(req.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Tools: []*genai.Tool{
			{FunctionDeclarations: IntentDeclarations()},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.logger.Warn("gemini request failed", slog.String("error", err.Error()))
		return nil, domainerrors.Internal("language model request failed").WithCause(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, domainerrors.Internal("language model returned no candidates")
	}

	decision := &Decision{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			decision.Intent = part.FunctionCall.Name
			decision.Slots = part.FunctionCall.Args
			return decision, nil
		}
		if part.Text != "" {
			decision.Reply += part.Text
		}
	}
	if decision.Reply == "" {
		return nil, domainerrors.Internal("language model returned an empty response")
	}
	return decision, nil
}
