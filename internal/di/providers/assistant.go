package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/tasktiles/tasktiles-server/internal/assistant"
	"github.com/tasktiles/tasktiles-server/internal/config"
	"github.com/tasktiles/tasktiles-server/internal/logger"
	"github.com/tasktiles/tasktiles-server/internal/service"
)

// ProvideLLM provides the language model behind the assistant. Without an
// API key the assistant stays up but answers every command with a retry
// reply.
func ProvideLLM(i do.Injector) (assistant.LLM, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Assistant.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, assistant commands will be unavailable")
		return assistant.Unavailable{}, nil
	}

	gemini, err := assistant.NewGemini(context.Background(), cfg.Assistant.GeminiAPIKey, cfg.Assistant.Model, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Assistant language model configured", "model", cfg.Assistant.Model)
	return gemini, nil
}

// ProvideDispatcher provides the assistant command dispatcher.
func ProvideDispatcher(i do.Injector) (*assistant.Dispatcher, error) {
	boards := do.MustInvoke[*service.BoardService](i)
	lists := do.MustInvoke[*service.ListService](i)
	cards := do.MustInvoke[*service.CardService](i)
	llm := do.MustInvoke[assistant.LLM](i)
	log := do.MustInvoke[*logger.Logger](i)

	return assistant.NewDispatcher(boards, lists, cards, llm, log.Logger), nil
}
