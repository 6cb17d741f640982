package sqlite

import (
	"context"
	"strings"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

const membershipColumns = `id, created_at, updated_at, board_id, user_id, role, joined_at`

func scanMembership(scanner interface{ Scan(dest ...any) error }) (*domain.Membership, error) {
	var m domain.Membership

	var (
		createdAt string
		updatedAt string
		joinedAt  string
		role      string
	)

	err := scanner.Scan(
		&m.ID,
		&createdAt,
		&updatedAt,
		&m.BoardID,
		&m.UserID,
		&role,
		&joinedAt,
	)
	if err != nil {
		return nil, err
	}

	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if m.JoinedAt, err = parseTime(joinedAt); err != nil {
		return nil, err
	}
	m.Role = domain.BoardRole(role)
	return &m, nil
}

// CreateMembership inserts a membership row.
// Returns store.ErrAlreadyExists if the user is already a member.
func (s *Store) CreateMembership(ctx context.Context, m *domain.Membership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO board_members (id, created_at, updated_at, board_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
		m.BoardID,
		m.UserID,
		string(m.Role),
		formatTime(m.JoinedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithMessage("user is already a member of this board")
		}
		return err
	}
	return nil
}

// DeleteMembership removes a user's membership on a board.
// Returns store.ErrNotFound if no such membership exists.
func (s *Store) DeleteMembership(ctx context.Context, boardID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM board_members WHERE board_id = ? AND user_id = ?`,
		boardID, userID)
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

// ListMembers returns the board's memberships ordered by join time.
func (s *Store) ListMembers(ctx context.Context, boardID string) ([]*domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM board_members WHERE board_id = ? ORDER BY joined_at`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// IsMember reports whether the user holds a membership row on the board.
// Board ownership is checked separately; owners are never stored as members.
func (s *Store) IsMember(ctx context.Context, boardID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM board_members WHERE board_id = ? AND user_id = ?`,
		boardID, userID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
