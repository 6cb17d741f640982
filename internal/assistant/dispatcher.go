package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/service"
	"github.com/tasktiles/tasktiles-server/internal/validation"
)

var validate = validation.New()

const failedReply = "I couldn't complete that, please try again."

// Dispatcher routes classified chat messages to domain operations. Every
// mutating intent resolves its entity references first; an ambiguous
// reference ends the turn with a clarification and no write.
type Dispatcher struct {
	boards *service.BoardService
	lists  *service.ListService
	cards  *service.CardService
	llm    LLM
	logger *slog.Logger
}

func NewDispatcher(boards *service.BoardService, lists *service.ListService, cards *service.CardService, llm LLM, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		boards: boards,
		lists:  lists,
		cards:  cards,
		llm:    llm,
		logger: logger.With(slog.String("component", "assistant")),
	}
}

// Chat handles one conversational turn for the user.
func (d *Dispatcher) Chat(ctx context.Context, userID string, req ChatRequest) (*ChatResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	system, err := d.systemInstruction(ctx, userID, req.BoardID)
	if err != nil {
		return nil, err
	}

	decision, err := d.llm.Decide(ctx, DecideRequest{
		System:  system,
		History: req.History,
		Message: req.Message,
	})
	if err != nil {
		d.logger.Warn("classification failed", slog.String("error", err.Error()))
		return &ChatResponse{Reply: failedReply, Action: ActionCommandFailed}, nil
	}
	if decision.Intent == "" {
		return &ChatResponse{Reply: decision.Reply}, nil
	}

	cmd := &command{
		intent:  decision.Intent,
		slots:   decision.Slots,
		userID:  userID,
		boardID: req.BoardID,
		state:   stateReceived,
	}
	resp, err := d.execute(ctx, cmd)
	if err != nil {
		cmd.transition(d.logger, stateFailed)
		d.logger.Error("command failed",
			slog.String("intent", cmd.intent),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return &ChatResponse{Reply: failedReply, Action: ActionCommandFailed}, nil
	}
	return resp, nil
}

// command is one mutating or reading instruction moving through the
// dispatch lifecycle.
type command struct {
	intent  string
	slots   map[string]any
	userID  string
	boardID string
	state   commandState
}

func (c *command) transition(logger *slog.Logger, next commandState) {
	logger.Debug("command state",
		slog.String("intent", c.intent),
		slog.String("from", string(c.state)),
		slog.String("to", string(next)))
	c.state = next
}

// clarify ends the command for this turn without any write.
func (c *command) clarify(logger *slog.Logger, reply string) *ChatResponse {
	c.transition(logger, stateClarification)
	return &ChatResponse{Reply: reply, Action: ActionClarification}
}

func (d *Dispatcher) execute(ctx context.Context, cmd *command) (*ChatResponse, error) {
	switch cmd.intent {
	case IntentListBoards:
		return d.listBoards(ctx, cmd)
	case IntentListToday:
		return d.listToday(ctx, cmd)
	case IntentCreateBoard:
		return d.createBoard(ctx, cmd)
	case IntentCreateList:
		return d.createList(ctx, cmd)
	case IntentDeleteList:
		return d.deleteList(ctx, cmd)
	case IntentCreateCard:
		return d.createCard(ctx, cmd)
	case IntentMoveCard:
		return d.moveCard(ctx, cmd)
	case IntentDeleteCard:
		return d.deleteCard(ctx, cmd)
	case IntentGetBoardInfo:
		return d.boardInfo(ctx, cmd)
	case IntentListOptions:
		return d.listOptions(ctx, cmd)
	default:
		d.logger.Warn("unknown intent", slog.String("intent", cmd.intent))
		return cmd.clarify(d.logger, "I'm not sure what you'd like me to do. Ask me to list your boards if you want a starting point."), nil
	}
}

func (d *Dispatcher) listBoards(ctx context.Context, cmd *command) (*ChatResponse, error) {
	boards, err := d.boards.ListBoards(ctx, cmd.userID)
	if err != nil {
		return nil, err
	}
	cmd.transition(d.logger, stateSucceeded)
	if len(boards) == 0 {
		return &ChatResponse{
			Reply:  "You don't have any boards yet. Ask me to create one.",
			Action: ActionBoardsListed,
			Data:   boards,
		}, nil
	}
	names := make([]string, len(boards))
	for i, b := range boards {
		names[i] = b.Title
	}
	return &ChatResponse{
		Reply:  fmt.Sprintf("You have %d %s: %s.", len(boards), plural(len(boards), "board"), strings.Join(names, ", ")),
		Action: ActionBoardsListed,
		Data:   boards,
	}, nil
}

func (d *Dispatcher) listToday(ctx context.Context, cmd *command) (*ChatResponse, error) {
	tasks, err := d.cards.TodayTasks(ctx, cmd.userID, time.Now())
	if err != nil {
		return nil, err
	}
	cmd.transition(d.logger, stateSucceeded)
	if len(tasks) == 0 {
		return &ChatResponse{
			Reply:  "Nothing on your plate for today.",
			Action: ActionTodayListed,
			Data:   tasks,
		}, nil
	}
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = fmt.Sprintf("%s (%s / %s)", t.Title, t.BoardTitle, t.ListTitle)
	}
	return &ChatResponse{
		Reply:  fmt.Sprintf("You have %d %s for today: %s.", len(tasks), plural(len(tasks), "task"), strings.Join(lines, "; ")),
		Action: ActionTodayListed,
		Data:   tasks,
	}, nil
}

func (d *Dispatcher) createBoard(ctx context.Context, cmd *command) (*ChatResponse, error) {
	name := stringSlot(cmd.slots, "name")
	if name == "" {
		return cmd.clarify(d.logger, "What should the board be called?"), nil
	}
	cmd.transition(d.logger, stateResolved)
	cmd.transition(d.logger, stateExecuting)
	board, err := d.boards.CreateBoard(ctx, cmd.userID, service.CreateBoardRequest{
		Title:       name,
		Description: stringSlot(cmd.slots, "description"),
	})
	if err != nil {
		return nil, err
	}
	cmd.transition(d.logger, stateSucceeded)
	return &ChatResponse{
		Reply:  fmt.Sprintf("Created board %q.", board.Title),
		Action: ActionBoardCreated,
		Data:   board,
	}, nil
}

func (d *Dispatcher) createList(ctx context.Context, cmd *command) (*ChatResponse, error) {
	name := stringSlot(cmd.slots, "name")
	if name == "" {
		return cmd.clarify(d.logger, "What should the list be called?"), nil
	}
	cmd.transition(d.logger, stateResolving)
	board, clar, err := d.resolveBoard(ctx, cmd, stringSlot(cmd.slots, "board"))
	if err != nil || clar != nil {
		return clar, err
	}
	cmd.transition(d.logger, stateResolved)
	cmd.transition(d.logger, stateExecuting)
	list, err := d.lists.CreateList(ctx, cmd.userID, service.CreateListRequest{
		BoardID: board.ID,
		Title:   name,
	})
	if err != nil {
		return nil, err
	}
	cmd.transition(d.logger, stateSucceeded)
	return &ChatResponse{
		Reply:  fmt.Sprintf("Added list %q to %q.", list.Title, board.Title),
		Action: ActionListCreated,
		Data:   list,
	}, nil
}

func (d *Dispatcher) deleteList(ctx context.Context, cmd *command) (*ChatResponse, error) {
	name := stringSlot(cmd.slots, "name")
	if name == "" {
		return cmd.clarify(d.logger, "Which list should I delete?"), nil
	}
	cmd.transition(d.logger, stateResolving)
	board, clar, err := d.resolveBoard(ctx, cmd, stringSlot(cmd.slots, "board"))
	if err != nil || clar != nil {
		return clar, err
	}
	list, clar, err := d.resolveListOn(ctx, cmd, board, name)
	if err != nil || clar != nil {
		return clar, err
	}
	cmd.transition(d.logger, stateResolved)
	cmd.transition(d.logger, stateExecuting)
	result, err := d.lists.DeleteList(ctx, list.ID, cmd.userID)
	if err != nil {
		return nil, err
	}
	cmd.transition(d.logger, stateSucceeded)
	return &ChatResponse{
		Reply:  fmt.Sprintf("Deleted list %q and %d %s it contained.", list.Title, result.CardsRemoved, plural(result.CardsRemoved, "card")),
		Action: ActionListDeleted,
		Data:   result,
	}, nil
}

func (d *Dispatcher) createCard(ctx context.Context, cmd *command) (*ChatResponse, error) {
	title := stringSlot(cmd.slots, "title")
	if title == "" {
		return cmd.clarify(d.logger, "What should the card be called?"), nil
	}
	cmd.transition(d.logger, stateResolving)
	list, clar, err := d.resolveList(ctx, cmd, stringSlot(cmd.slots, "list"))
	if err != nil || clar != nil {
		return clar, err
	}
	cmd.transition(d.logger, stateResolved)
	cmd.transition(d.logger, stateExecuting)
	card, err := d.cards.CreateCard(ctx, cmd.userID, service.CreateCardRequest{
		ListID:      list.ID,
		Title:       title,
		Description: stringSlot(cmd.slots, "description"),
		Priority:    normalizePriority(stringSlot(cmd.slots, "priority")),
	})
	if err != nil {
		return nil, err
	}
	cmd.transition(d.logger, stateSucceeded)
	return &ChatResponse{
		Reply:  fmt.Sprintf("Added %q to %q.", card.Title, list.Title),
		Action: ActionCardCreated,
		Data:   card,
	}, nil
}

func (d *Dispatcher) moveCard(ctx context.Context, cmd *command) (*ChatResponse, error) {
	title := stringSlot(cmd.slots, "title")
	targetName := stringSlot(cmd.slots, "target_list")
	if title == "" || targetName == "" {
		return cmd.clarify(d.logger, "Tell me which card to move and which list to move it to."), nil
	}
	cmd.transition(d.logger, stateResolving)
	// The card may live on any list of the current board, so it resolves
	// against the whole board rather than the target list.
	card, clar, err := d.resolveCard(ctx, cmd, title, "")
	if err != nil || clar != nil {
		return clar, err
	}
	target, clar, err := d.resolveList(ctx, cmd, targetName)
	if err != nil || clar != nil {
		return clar, err
	}
	cmd.transition(d.logger, stateResolved)
	cmd.transition(d.logger, stateExecuting)
	moved, err := d.cards.MoveCard(ctx, card.ID, cmd.userID, service.MoveCardRequest{
		TargetListID: target.ID,
		Position:     intSlot(cmd.slots, "position", service.EndPosition),
	})
	if err != nil {
		return nil, err
	}
	cmd.transition(d.logger, stateSucceeded)
	return &ChatResponse{
		Reply:  fmt.Sprintf("Moved %q to %q.", moved.Title, target.Title),
		Action: ActionCardMoved,
		Data:   moved,
	}, nil
}

func (d *Dispatcher) deleteCard(ctx context.Context, cmd *command) (*ChatResponse, error) {
	title := stringSlot(cmd.slots, "title")
	if title == "" {
		return cmd.clarify(d.logger, "Which card should I delete?"), nil
	}
	cmd.transition(d.logger, stateResolving)
	card, clar, err := d.resolveCard(ctx, cmd, title, stringSlot(cmd.slots, "list"))
	if err != nil || clar != nil {
		return clar, err
	}
	cmd.transition(d.logger, stateResolved)
	cmd.transition(d.logger, stateExecuting)
	if err := d.cards.DeleteCard(ctx, card.ID, cmd.userID); err != nil {
		return nil, err
	}
	cmd.transition(d.logger, stateSucceeded)
	return &ChatResponse{
		Reply:  fmt.Sprintf("Deleted %q.", card.Title),
		Action: ActionCardDeleted,
		Data:   card,
	}, nil
}

func (d *Dispatcher) boardInfo(ctx context.Context, cmd *command) (*ChatResponse, error) {
	cmd.transition(d.logger, stateResolving)
	board, clar, err := d.resolveBoard(ctx, cmd, stringSlot(cmd.slots, "board"))
	if err != nil || clar != nil {
		return clar, err
	}
	snapshot, err := d.boards.GetBoard(ctx, board.ID, cmd.userID)
	if err != nil {
		return nil, err
	}
	cmd.transition(d.logger, stateSucceeded)
	if len(snapshot.Lists) == 0 {
		return &ChatResponse{
			Reply:  fmt.Sprintf("%q has no lists yet.", snapshot.Title),
			Action: ActionBoardInfo,
			Data:   snapshot,
		}, nil
	}
	parts := make([]string, len(snapshot.Lists))
	for i, l := range snapshot.Lists {
		parts[i] = fmt.Sprintf("%s (%d %s)", l.Title, len(l.Cards), plural(len(l.Cards), "card"))
	}
	return &ChatResponse{
		Reply:  fmt.Sprintf("%q has %d %s: %s.", snapshot.Title, len(snapshot.Lists), plural(len(snapshot.Lists), "list"), strings.Join(parts, ", ")),
		Action: ActionBoardInfo,
		Data:   snapshot,
	}, nil
}

func (d *Dispatcher) listOptions(_ context.Context, cmd *command) (*ChatResponse, error) {
	cmd.transition(d.logger, stateSucceeded)
	return &ChatResponse{
		Reply: "I can list your boards, show a board's lists and cards, show today's tasks, " +
			"create boards, lists, and cards, move cards between lists, and delete lists or cards. " +
			"Just tell me what you'd like, naming the board, list, or card.",
		Action: ActionOptionsListed,
	}, nil
}

// systemInstruction frames the model's role and, when a current board is
// set, includes a snapshot of it so the model can ground its replies.
func (d *Dispatcher) systemInstruction(ctx context.Context, userID, boardID string) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are the TaskTiles assistant, helping a user manage Kanban boards of lists and cards. ")
	sb.WriteString("When the user asks you to act on their boards, call the matching function with the names they used; do not invent names. ")
	sb.WriteString("For anything else, answer briefly and conversationally.")
	if boardID == "" {
		return sb.String(), nil
	}
	snapshot, err := d.boards.GetBoard(ctx, boardID, userID)
	if err != nil {
		return "", err
	}
	sb.WriteString(fmt.Sprintf("\n\nThe user is currently viewing the board %q.", snapshot.Title))
	for _, l := range snapshot.Lists {
		titles := make([]string, len(l.Cards))
		for i, c := range l.Cards {
			titles[i] = c.Title
		}
		sb.WriteString(fmt.Sprintf("\nList %q: %s", l.Title, strings.Join(titles, ", ")))
	}
	return sb.String(), nil
}

func stringSlot(slots map[string]any, key string) string {
	if v, ok := slots[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// intSlot reads a numeric slot. Function-call arguments arrive as JSON
// numbers, so float64 is the common case.
func intSlot(slots map[string]any, key string, fallback int) int {
	switch v := slots[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// normalizePriority maps anything outside the known levels to medium.
func normalizePriority(s string) string {
	switch strings.ToLower(s) {
	case string(domain.PriorityLow), string(domain.PriorityMedium), string(domain.PriorityHigh):
		return strings.ToLower(s)
	default:
		return string(domain.PriorityMedium)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
