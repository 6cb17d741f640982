package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	domainerrors "github.com/tasktiles/tasktiles-server/internal/errors"
	"github.com/tasktiles/tasktiles-server/internal/id"
	"github.com/tasktiles/tasktiles-server/internal/position"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

// CardService handles card CRUD, reordering, and the today's-tasks view.
type CardService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCardService creates a new card service.
func NewCardService(st store.Store, logger *slog.Logger) *CardService {
	return &CardService{store: st, logger: logger}
}

// CreateCardRequest contains new card data. Priority falls back to medium
// when omitted or unrecognized.
type CreateCardRequest struct {
	ListID      string   `json:"list_id" validate:"required"`
	Title       string   `json:"title" validate:"required,min=1,max=500"`
	Description string   `json:"description" validate:"max=5000"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Checklist   []string `json:"checklist" validate:"omitempty,dive,max=500"`
}

// UpdateCardRequest contains editable card fields.
type UpdateCardRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=500"`
	Description string   `json:"description" validate:"max=5000"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Checklist   []string `json:"checklist" validate:"omitempty,dive,max=500"`
}

// MoveCardRequest targets a list and position. An empty TargetListID moves
// within the current list; position -1 means the end.
type MoveCardRequest struct {
	TargetListID string `json:"target_list_id"`
	Position     int    `json:"position" validate:"gte=-1"`
}

// CreateCard appends a card to a list. The creating user becomes the
// creator and sole initial contributor.
func (s *CardService) CreateCard(ctx context.Context, userID string, req CreateCardRequest) (*domain.Card, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	list, err := s.authorizeList(ctx, req.ListID, userID)
	if err != nil {
		return nil, err
	}

	card := &domain.Card{
		ListID:      list.ID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.ParsePriority(req.Priority),
		Checklist:   req.Checklist,
		CreatedBy:   userID,
	}
	card.ID = id.MustGenerate("crd")
	card.InitTimestamps()

	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	s.logger.Info("Card created", "card_id", card.ID, "list_id", list.ID, "position", card.Position)
	return card, nil
}

// GetCard loads a card the user can access.
func (s *CardService) GetCard(ctx context.Context, cardID, userID string) (*domain.Card, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("card not found")
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	if _, err := s.authorizeList(ctx, card.ListID, userID); err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateCard edits a card's fields and records the editor as a contributor.
func (s *CardService) UpdateCard(ctx context.Context, cardID, userID string, req UpdateCardRequest) (*domain.Card, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	card, err := s.GetCard(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	card.Title = req.Title
	card.Description = req.Description
	card.Priority = domain.ParsePriority(req.Priority)
	card.Checklist = req.Checklist
	card.Touch()

	if err := s.store.UpdateCard(ctx, card, userID); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}

	return s.GetCard(ctx, cardID, userID)
}

// MoveCard repositions a card within its list or into a sibling list on the
// same board. A cross-board target is rejected before any write.
func (s *CardService) MoveCard(ctx context.Context, cardID, userID string, req MoveCardRequest) (*domain.Card, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	card, err := s.GetCard(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	targetListID := req.TargetListID
	if targetListID != "" && targetListID != card.ListID {
		target, err := s.store.GetList(ctx, targetListID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFound("target list not found")
			}
			return nil, fmt.Errorf("get target list: %w", err)
		}
		source, err := s.store.GetList(ctx, card.ListID)
		if err != nil {
			return nil, fmt.Errorf("get source list: %w", err)
		}
		if target.BoardID != source.BoardID {
			return nil, domainerrors.InvalidState("cannot move a card to a list on another board")
		}
	}

	if err := s.store.MoveCard(ctx, cardID, targetListID, req.Position, userID); err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return nil, domainerrors.InvalidState(err.Error())
		}
		return nil, fmt.Errorf("move card: %w", err)
	}

	return s.GetCard(ctx, cardID, userID)
}

// DeleteCard removes a card, recording the deleting user as a contributor
// before removal.
func (s *CardService) DeleteCard(ctx context.Context, cardID, userID string) error {
	if _, err := s.GetCard(ctx, cardID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteCard(ctx, cardID, userID); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	s.logger.Info("Card deleted", "card_id", cardID, "user_id", userID)
	return nil
}

// TodayTask is a card surfaced by the today's-tasks view, tagged with where
// it lives.
type TodayTask struct {
	*domain.Card
	BoardID    string `json:"board_id"`
	BoardTitle string `json:"board_title"`
	ListTitle  string `json:"list_title"`
}

// TodayTasks returns cards across the user's accessible boards that were
// created today or mention "today" in their title or description. The
// substring heuristic is deliberate and mirrors how users phrase ad-hoc
// reminders.
func (s *CardService) TodayTasks(ctx context.Context, userID string, now time.Time) ([]*TodayTask, error) {
	boards, err := s.store.ListAccessibleBoards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	var tasks []*TodayTask
	for _, board := range boards {
		lists, err := s.store.ListListsByBoard(ctx, board.ID)
		if err != nil {
			return nil, fmt.Errorf("list lists: %w", err)
		}
		listTitles := make(map[string]string, len(lists))
		for _, l := range lists {
			listTitles[l.ID] = l.Title
		}

		cards, err := s.store.ListCardsByBoard(ctx, board.ID)
		if err != nil {
			return nil, fmt.Errorf("list cards: %w", err)
		}
		for _, c := range cards {
			if !isTodayTask(c, now) {
				continue
			}
			tasks = append(tasks, &TodayTask{
				Card:       c,
				BoardID:    board.ID,
				BoardTitle: board.Title,
				ListTitle:  listTitles[c.ListID],
			})
		}
	}
	return tasks, nil
}

func isTodayTask(c *domain.Card, now time.Time) bool {
	y1, m1, d1 := c.CreatedAt.Local().Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), "today") ||
		strings.Contains(strings.ToLower(c.Description), "today")
}

// authorizeList loads a list and checks board access for the user.
func (s *CardService) authorizeList(ctx context.Context, listID, userID string) (*domain.List, error) {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	if _, err := authorizeBoard(ctx, s.store, list.BoardID, userID); err != nil {
		return nil, err
	}
	return list, nil
}

// EndPosition is the sentinel callers pass to mean "bottom of the list".
const EndPosition = position.End
