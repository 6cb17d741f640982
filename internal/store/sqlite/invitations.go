package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

const invitationColumns = `id, created_at, updated_at, board_id, inviter_id, invitee_id, message, status, responded_at`

func scanInvitation(scanner interface{ Scan(dest ...any) error }) (*domain.Invitation, error) {
	var inv domain.Invitation

	var (
		createdAt   string
		updatedAt   string
		status      string
		respondedAt sql.NullString
	)

	err := scanner.Scan(
		&inv.ID,
		&createdAt,
		&updatedAt,
		&inv.BoardID,
		&inv.InviterID,
		&inv.InviteeID,
		&inv.Message,
		&status,
		&respondedAt,
	)
	if err != nil {
		return nil, err
	}

	if inv.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if inv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if inv.RespondedAt, err = parseNullableTime(respondedAt); err != nil {
		return nil, err
	}
	inv.Status = domain.InvitationStatus(status)
	return &inv, nil
}

// CreateInvitation inserts a pending invitation. The partial unique index on
// pending rows rejects a second open invitation for the same board and
// invitee, surfaced as store.ErrAlreadyExists.
func (s *Store) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invitations (id, created_at, updated_at, board_id, inviter_id, invitee_id, message, status, responded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		formatTime(inv.CreatedAt),
		formatTime(inv.UpdatedAt),
		inv.BoardID,
		inv.InviterID,
		inv.InviteeID,
		inv.Message,
		string(inv.Status),
		nullTimeString(inv.RespondedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithMessage("an invitation for this user is already pending")
		}
		return err
	}
	return nil
}

// GetInvitation retrieves an invitation by ID.
// Returns store.ErrNotFound if the invitation does not exist.
func (s *Store) GetInvitation(ctx context.Context, id string) (*domain.Invitation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id)

	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// AcceptInvitation flips the invitation to accepted and creates the
// membership in one transaction.
func (s *Store) AcceptInvitation(ctx context.Context, inv *domain.Invitation, m *domain.Membership) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE invitations SET status = ?, responded_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(inv.Status),
		nullTimeString(inv.RespondedAt),
		formatTime(inv.UpdatedAt),
		inv.ID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("pending invitation not found")
	}

	_, err = tx.ExecContext(ctx, `
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

	return tx.Commit()
}

// UpdateInvitation persists a status flip on an existing invitation.
func (s *Store) UpdateInvitation(ctx context.Context, inv *domain.Invitation) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE invitations SET status = ?, responded_at = ?, updated_at = ?
		WHERE id = ?`,
		string(inv.Status),
		nullTimeString(inv.RespondedAt),
		formatTime(inv.UpdatedAt),
		inv.ID,
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

// ListInvitationsByInvitee returns invitations addressed to the user,
// newest first.
func (s *Store) ListInvitationsByInvitee(ctx context.Context, inviteeID string) ([]*domain.Invitation, error) {
	return s.queryInvitations(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE invitee_id = ? ORDER BY created_at DESC`, inviteeID)
}

// ListInvitationsByInviter returns invitations the user has sent, newest first.
func (s *Store) ListInvitationsByInviter(ctx context.Context, inviterID string) ([]*domain.Invitation, error) {
	return s.queryInvitations(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE inviter_id = ? ORDER BY created_at DESC`, inviterID)
}

func (s *Store) queryInvitations(ctx context.Context, query string, args ...any) ([]*domain.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invitations, nil
}
