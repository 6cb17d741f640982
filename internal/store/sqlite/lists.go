package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/position"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

// listColumns is the ordered list of columns selected in list queries.
// Must match the scan order in scanList.
const listColumns = `id, created_at, updated_at, board_id, title, position`

// scanList scans a sql.Row (or sql.Rows via its Scan method) into a domain.List.
func scanList(scanner interface{ Scan(dest ...any) error }) (*domain.List, error) {
	var l domain.List

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&l.ID,
		&createdAt,
		&updatedAt,
		&l.BoardID,
		&l.Title,
		&l.Position,
	)
	if err != nil {
		return nil, err
	}

	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateList appends a list at the end of its board: position = sibling
// count before insertion, computed and inserted in one transaction.
func (s *Store) CreateList(ctx context.Context, list *domain.List) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	count, err := countSiblings(ctx, tx, "lists", "board_id", list.BoardID)
	if err != nil {
		return err
	}
	list.Position = position.Append(count)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lists (id, created_at, updated_at, board_id, title, position)
		VALUES (?, ?, ?, ?, ?, ?)`,
		list.ID,
		formatTime(list.CreatedAt),
		formatTime(list.UpdatedAt),
		list.BoardID,
		list.Title,
		list.Position,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetList retrieves a list by ID.
// Returns store.ErrNotFound if the list does not exist.
func (s *Store) GetList(ctx context.Context, id string) (*domain.List, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = ?`, id)

	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// RenameList updates a list's title.
// Returns store.ErrNotFound if the list does not exist.
func (s *Store) RenameList(ctx context.Context, id, title string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE lists SET title = ?, updated_at = ? WHERE id = ?`,
		title, formatTime(time.Now()), id)
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
	return nil
}

// MoveList reorders a list within its board. The requested position is
// clamped (position.End means the bottom). Shifts and the final set run in
// one transaction.
func (s *Store) MoveList(ctx context.Context, id string, newPos int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	count, err := countSiblings(ctx, tx, "lists", "board_id", l.BoardID)
	if err != nil {
		return err
	}

	shifts, final, err := position.PlanMove(l.Position, newPos, count)
	if err != nil {
		return store.ErrInvalidInput.WithCause(err)
	}
	if final == l.Position {
		return tx.Commit()
	}

	// Park the moved list outside the dense range so the bulk shifts
	// cannot collide with it.
	if _, err := tx.ExecContext(ctx,
		`UPDATE lists SET position = -1 WHERE id = ?`, id); err != nil {
		return err
	}
	for _, sh := range shifts {
		if err := applyShift(ctx, tx, "lists", "board_id", l.BoardID, sh); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE lists SET position = ?, updated_at = ? WHERE id = ?`,
		final, formatTime(time.Now()), id); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteList removes a list, its cards, and compacts surviving sibling
// positions, all in one transaction. Returns the number of cards removed.
func (s *Store) DeleteList(ctx context.Context, id string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	cards, err := countSiblings(ctx, tx, "cards", "list_id", id)
	if err != nil {
		return 0, err
	}

	// Cards cascade via the foreign key.
	if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id); err != nil {
		return 0, err
	}
	if err := applyShift(ctx, tx, "lists", "board_id", l.BoardID, position.PlanRemove(l.Position)); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return cards, nil
}

// ListListsByBoard returns the board's lists ordered by position.
func (s *Store) ListListsByBoard(ctx context.Context, boardID string) ([]*domain.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE board_id = ? ORDER BY position`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []*domain.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lists, nil
}

// CountLists returns the number of lists on a board.
func (s *Store) CountLists(ctx context.Context, boardID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lists WHERE board_id = ?`, boardID).Scan(&n)
	return n, err
}
