package sqlite

import (
	"context"
	"database/sql"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

// boardColumns is the ordered list of columns selected in board queries.
// Must match the scan order in scanBoard.
const boardColumns = `id, created_at, updated_at, title, description, owner_id`

// scanBoard scans a sql.Row (or sql.Rows via its Scan method) into a domain.Board.
func scanBoard(scanner interface{ Scan(dest ...any) error }) (*domain.Board, error) {
	var b domain.Board

	var (
		createdAt   string
		updatedAt   string
		description sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&description,
		&b.OwnerID,
	)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	b.Description = description.String

	return &b, nil
}

// CreateBoard inserts a new board. Board titles carry no uniqueness
// constraint.
func (s *Store) CreateBoard(ctx context.Context, board *domain.Board) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO boards (id, created_at, updated_at, title, description, owner_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		board.ID,
		formatTime(board.CreatedAt),
		formatTime(board.UpdatedAt),
		board.Title,
		nullString(board.Description),
		board.OwnerID,
	)
	return err
}

// GetBoard retrieves a board by ID.
// Returns store.ErrNotFound if the board does not exist.
func (s *Store) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE id = ?`, id)

	b, err := scanBoard(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBoard rewrites the board's title and description.
// Returns store.ErrNotFound if the board does not exist.
func (s *Store) UpdateBoard(ctx context.Context, board *domain.Board) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE boards SET updated_at = ?, title = ?, description = ? WHERE id = ?`,
		formatTime(board.UpdatedAt),
		board.Title,
		nullString(board.Description),
		board.ID,
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
	return nil
}

// DeleteBoard removes a board. Lists, cards, memberships, and invitations
// cascade via foreign keys. Idempotent.
func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	return err
}

// ListAccessibleBoards returns boards the user owns or is a member of,
// ordered by creation time.
func (s *Store) ListAccessibleBoards(ctx context.Context, userID string) ([]*domain.Board, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+boardColumns+` FROM boards
		WHERE owner_id = ?
		   OR id IN (SELECT board_id FROM board_members WHERE user_id = ?)
		ORDER BY created_at`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return boards, nil
}
