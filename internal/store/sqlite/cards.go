package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"time"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/position"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

// cardColumns is the ordered list of columns selected in card queries.
// Must match the scan order in scanCard.
const cardColumns = `id, created_at, updated_at, list_id, title, description, position, priority, checklist, created_by`

// scanCard scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Card. Contributors are loaded separately.
func scanCard(scanner interface{ Scan(dest ...any) error }) (*domain.Card, error) {
	var c domain.Card

	var (
		createdAt string
		updatedAt string
		priority  string
		checklist string
	)

	err := scanner.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.ListID,
		&c.Title,
		&c.Description,
		&c.Position,
		&priority,
		&checklist,
		&c.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	c.Priority = domain.ParsePriority(priority)
	if err := json.Unmarshal([]byte(checklist), &c.Checklist); err != nil {
		return nil, err
	}
	return &c, nil
}

func marshalChecklist(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// loadContributors attaches the card's contributor records in contribution order.
func (s *Store) loadContributors(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}, card *domain.Card,
) error {
	rows, err := q.QueryContext(ctx, `
		SELECT user_id, contributed_at FROM card_contributors
		WHERE card_id = ? ORDER BY contributed_at`, card.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	card.Contributors = nil
	for rows.Next() {
		var (
			c  domain.Contributor
			at string
		)
		if err := rows.Scan(&c.UserID, &at); err != nil {
			return err
		}
		if c.ContributedAt, err = parseTime(at); err != nil {
			return err
		}
		card.Contributors = append(card.Contributors, c)
	}
	return rows.Err()
}

func recordContributor(ctx context.Context, tx *sql.Tx, cardID, userID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO card_contributors (card_id, user_id, contributed_at)
		VALUES (?, ?, ?)`,
		cardID, userID, formatTime(at))
	return err
}

// CreateCard appends a card at the end of its list and records the creator
// as the first contributor, all in one transaction.
func (s *Store) CreateCard(ctx context.Context, card *domain.Card) error {
	checklist, err := marshalChecklist(card.Checklist)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	count, err := countSiblings(ctx, tx, "cards", "list_id", card.ListID)
	if err != nil {
		return err
	}
	card.Position = position.Append(count)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cards (id, created_at, updated_at, list_id, title, description, position, priority, checklist, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID,
		formatTime(card.CreatedAt),
		formatTime(card.UpdatedAt),
		card.ListID,
		card.Title,
		card.Description,
		card.Position,
		string(card.Priority),
		checklist,
		card.CreatedBy,
	)
	if err != nil {
		return err
	}

	if err := recordContributor(ctx, tx, card.ID, card.CreatedBy, card.CreatedAt); err != nil {
		return err
	}
	card.AddContributor(card.CreatedBy)

	return tx.Commit()
}

// GetCard retrieves a card by ID, contributors included.
// Returns store.ErrNotFound if the card does not exist.
func (s *Store) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)

	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadContributors(ctx, s.db, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCard persists the card's mutable fields (title, description,
// priority, checklist) and records the editing user as a contributor.
func (s *Store) UpdateCard(ctx context.Context, card *domain.Card, userID string) error {
	checklist, err := marshalChecklist(card.Checklist)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		UPDATE cards SET title = ?, description = ?, priority = ?, checklist = ?, updated_at = ?
		WHERE id = ?`,
		card.Title,
		card.Description,
		string(card.Priority),
		checklist,
		formatTime(now),
		card.ID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := recordContributor(ctx, tx, card.ID, userID, now); err != nil {
		return err
	}

	return tx.Commit()
}

// MoveCard repositions a card, either within its list or into another list
// on the same board. Positions are clamped and position.End means the
// bottom of the target list. The moving user is recorded as a contributor.
// Everything runs in one transaction; a target list on a different board is
// rejected before any write.
func (s *Store) MoveCard(ctx context.Context, cardID, targetListID string, newPos int, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, cardID)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	var srcBoard string
	if err := tx.QueryRowContext(ctx,
		`SELECT board_id FROM lists WHERE id = ?`, c.ListID).Scan(&srcBoard); err != nil {
		return err
	}

	if targetListID == "" {
		targetListID = c.ListID
	}

	now := time.Now()

	if targetListID == c.ListID {
		count, err := countSiblings(ctx, tx, "cards", "list_id", c.ListID)
		if err != nil {
			return err
		}
		shifts, final, err := position.PlanMove(c.Position, newPos, count)
		if err != nil {
			return store.ErrInvalidInput.WithCause(err)
		}
		if final != c.Position {
			if _, err := tx.ExecContext(ctx,
				`UPDATE cards SET position = -1 WHERE id = ?`, cardID); err != nil {
				return err
			}
			for _, sh := range shifts {
				if err := applyShift(ctx, tx, "cards", "list_id", c.ListID, sh); err != nil {
					return err
				}
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE cards SET position = ?, updated_at = ? WHERE id = ?`,
				final, formatTime(now), cardID); err != nil {
				return err
			}
		}
	} else {
		var dstBoard string
		err := tx.QueryRowContext(ctx,
			`SELECT board_id FROM lists WHERE id = ?`, targetListID).Scan(&dstBoard)
		if err == sql.ErrNoRows {
			return store.ErrNotFound.WithMessage("target list not found")
		}
		if err != nil {
			return err
		}
		if dstBoard != srcBoard {
			return store.ErrInvalidInput.WithMessage("cannot move a card to a list on another board")
		}

		dstCount, err := countSiblings(ctx, tx, "cards", "list_id", targetListID)
		if err != nil {
			return err
		}
		src, dst, final := position.PlanTransfer(c.Position, dstCount, newPos)

		// Reparent first so the destination shift picks the card up only
		// after its siblings have made room.
		if err := applyShift(ctx, tx, "cards", "list_id", c.ListID, src); err != nil {
			return err
		}
		if err := applyShift(ctx, tx, "cards", "list_id", targetListID, dst); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE cards SET list_id = ?, position = ?, updated_at = ? WHERE id = ?`,
			targetListID, final, formatTime(now), cardID); err != nil {
			return err
		}
	}

	if err := recordContributor(ctx, tx, cardID, userID, now); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteCard removes a card and compacts its list. The deleting user is
// recorded as a contributor before removal so the action is attributed
// inside the same transaction.
func (s *Store) DeleteCard(ctx context.Context, cardID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, cardID)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := recordContributor(ctx, tx, cardID, userID, time.Now()); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, cardID); err != nil {
		return err
	}
	if err := applyShift(ctx, tx, "cards", "list_id", c.ListID, position.PlanRemove(c.Position)); err != nil {
		return err
	}

	return tx.Commit()
}

// ListCardsByList returns the list's cards ordered by position,
// contributors included.
func (s *Store) ListCardsByList(ctx context.Context, listID string) ([]*domain.Card, error) {
	return s.queryCards(ctx, `
		SELECT `+cardColumns+` FROM cards WHERE list_id = ? ORDER BY position`, listID)
}

// ListCardsByBoard returns every card on the board ordered by list
// position, then card position.
func (s *Store) ListCardsByBoard(ctx context.Context, boardID string) ([]*domain.Card, error) {
	return s.queryCards(ctx, `
		SELECT c.id, c.created_at, c.updated_at, c.list_id, c.title, c.description, c.position, c.priority, c.checklist, c.created_by
		FROM cards c
		JOIN lists l ON l.id = c.list_id
		WHERE l.board_id = ?
		ORDER BY l.position, c.position`, boardID)
}

func (s *Store) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range cards {
		if err := s.loadContributors(ctx, s.db, c); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

// CountCards returns the number of cards in a list.
func (s *Store) CountCards(ctx context.Context, listID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE list_id = ?`, listID).Scan(&n)
	return n, err
}
