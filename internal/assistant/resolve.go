package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/resolver"
)

// resolveBoard turns an optional free-text board name into a concrete board.
// With no name it falls back to the current board, then to the user's sole
// board, and otherwise asks which board was meant.
func (d *Dispatcher) resolveBoard(ctx context.Context, cmd *command, name string) (*domain.Board, *ChatResponse, error) {
	boards, err := d.boards.ListBoards(ctx, cmd.userID)
	if err != nil {
		return nil, nil, err
	}

	if name == "" {
		if cmd.boardID != "" {
			for _, b := range boards {
				if b.ID == cmd.boardID {
					return b, nil, nil
				}
			}
		}
		switch len(boards) {
		case 0:
			return nil, cmd.clarify(d.logger, "You don't have any boards yet. Ask me to create one first."), nil
		case 1:
			return boards[0], nil, nil
		default:
			return nil, cmd.clarify(d.logger, fmt.Sprintf("Which board do you mean? You have: %s.", joinTitles(boards))), nil
		}
	}

	candidates := make([]resolver.Candidate, len(boards))
	for i, b := range boards {
		candidates[i] = resolver.Candidate{
			ID:        b.ID,
			Name:      b.Title,
			InContext: b.ID == cmd.boardID,
			CreatedAt: b.CreatedAt,
		}
	}
	result := resolver.Resolve(name, candidates)
	if result.Outcome == resolver.Resolved {
		for _, b := range boards {
			if b.ID == result.Match.ID {
				return b, nil, nil
			}
		}
	}
	return nil, d.clarifyResolution(cmd, "board", name, result), nil
}

// resolveListOn resolves a list name within one known board.
func (d *Dispatcher) resolveListOn(ctx context.Context, cmd *command, board *domain.Board, name string) (*domain.List, *ChatResponse, error) {
	snapshot, err := d.boards.GetBoard(ctx, board.ID, cmd.userID)
	if err != nil {
		return nil, nil, err
	}
	candidates := make([]resolver.Candidate, len(snapshot.Lists))
	for i, l := range snapshot.Lists {
		candidates[i] = resolver.Candidate{
			ID:         l.ID,
			Name:       l.Title,
			ParentID:   board.ID,
			ParentName: board.Title,
			InContext:  true,
			CreatedAt:  l.CreatedAt,
		}
	}
	result := resolver.Resolve(name, candidates)
	if result.Outcome == resolver.Resolved {
		for _, l := range snapshot.Lists {
			if l.ID == result.Match.ID {
				return l.List, nil, nil
			}
		}
	}
	return nil, d.clarifyResolution(cmd, "list", name, result), nil
}

// resolveList resolves a list name scoped to the current board first, then
// every board the user can reach. With no name it falls back to the default
// board's sole list.
func (d *Dispatcher) resolveList(ctx context.Context, cmd *command, name string) (*domain.List, *ChatResponse, error) {
	if name == "" {
		board, clar, err := d.resolveBoard(ctx, cmd, "")
		if err != nil || clar != nil {
			return nil, clar, err
		}
		snapshot, err := d.boards.GetBoard(ctx, board.ID, cmd.userID)
		if err != nil {
			return nil, nil, err
		}
		switch len(snapshot.Lists) {
		case 0:
			return nil, cmd.clarify(d.logger, fmt.Sprintf("%q has no lists yet. Ask me to create one first.", board.Title)), nil
		case 1:
			return snapshot.Lists[0].List, nil, nil
		default:
			names := make([]string, len(snapshot.Lists))
			for i, l := range snapshot.Lists {
				names[i] = l.Title
			}
			return nil, cmd.clarify(d.logger, fmt.Sprintf("Which list do you mean? %q has: %s.", board.Title, strings.Join(names, ", "))), nil
		}
	}

	boards, err := d.boards.ListBoards(ctx, cmd.userID)
	if err != nil {
		return nil, nil, err
	}
	var candidates []resolver.Candidate
	lists := make(map[string]*domain.List)
	for _, b := range boards {
		snapshot, err := d.boards.GetBoard(ctx, b.ID, cmd.userID)
		if err != nil {
			return nil, nil, err
		}
		for _, l := range snapshot.Lists {
			lists[l.ID] = l.List
			candidates = append(candidates, resolver.Candidate{
				ID:         l.ID,
				Name:       l.Title,
				ParentID:   b.ID,
				ParentName: b.Title,
				InContext:  b.ID == cmd.boardID,
				CreatedAt:  l.CreatedAt,
			})
		}
	}
	result := resolver.Resolve(name, candidates)
	if result.Outcome == resolver.Resolved {
		return lists[result.Match.ID], nil, nil
	}
	return nil, d.clarifyResolution(cmd, "list", name, result), nil
}

// resolveCard resolves a card title within the current (or sole) board. When
// a list name is given the search narrows to that list; otherwise every list
// on the board is searched, since the card may live anywhere on it.
func (d *Dispatcher) resolveCard(ctx context.Context, cmd *command, title, listName string) (*domain.Card, *ChatResponse, error) {
	board, clar, err := d.resolveBoard(ctx, cmd, "")
	if err != nil || clar != nil {
		return nil, clar, err
	}
	snapshot, err := d.boards.GetBoard(ctx, board.ID, cmd.userID)
	if err != nil {
		return nil, nil, err
	}

	var scope *domain.List
	if listName != "" {
		scope, clar, err = d.resolveListOn(ctx, cmd, board, listName)
		if err != nil || clar != nil {
			return nil, clar, err
		}
	}

	var candidates []resolver.Candidate
	cards := make(map[string]*domain.Card)
	for _, l := range snapshot.Lists {
		if scope != nil && l.ID != scope.ID {
			continue
		}
		for _, c := range l.Cards {
			cards[c.ID] = c
			candidates = append(candidates, resolver.Candidate{
				ID:         c.ID,
				Name:       c.Title,
				ParentID:   l.ID,
				ParentName: l.Title,
				InContext:  true,
				CreatedAt:  c.CreatedAt,
			})
		}
	}
	result := resolver.Resolve(title, candidates)
	if result.Outcome == resolver.Resolved {
		return cards[result.Match.ID], nil, nil
	}
	return nil, d.clarifyResolution(cmd, "card", title, result), nil
}

// clarifyResolution renders a resolver miss as a clarification turn.
func (d *Dispatcher) clarifyResolution(cmd *command, kind, query string, result resolver.Result) *ChatResponse {
	switch result.Outcome {
	case resolver.Suggestion:
		return cmd.clarify(d.logger, fmt.Sprintf("I couldn't find a %s called %q. Did you mean %q?", kind, query, result.Match.Name))
	case resolver.AmbiguousParent:
		return cmd.clarify(d.logger, fmt.Sprintf("There's a %s called %q on more than one board (%s). Which board did you mean?", kind, query, strings.Join(result.Parents, ", ")))
	default:
		if len(result.Available) == 0 {
			return cmd.clarify(d.logger, fmt.Sprintf("I couldn't find a %s called %q, and there are no %ss to choose from yet.", kind, query, kind))
		}
		return cmd.clarify(d.logger, fmt.Sprintf("I couldn't find a %s called %q. Available %ss: %s.", kind, query, kind, strings.Join(result.Available, ", ")))
	}
}

func joinTitles(boards []*domain.Board) string {
	names := make([]string, len(boards))
	for i, b := range boards {
		names[i] = b.Title
	}
	return strings.Join(names, ", ")
}
