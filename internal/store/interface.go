// Package store defines the persistence boundary for the Task Tiles server.
// Implementations must apply every position shift-and-set sequence as one
// atomic unit: concurrent moves on the same collection may never observe
// partially applied shifts.
package store

import (
	"context"
	"time"

	"github.com/tasktiles/tasktiles-server/internal/domain"
)

// Store is the full persistence interface consumed by the service layer.
type Store interface {
	UserStore
	SessionStore
	BoardStore
	ListStore
	CardStore
	MembershipStore
	InvitationStore

	Ping(ctx context.Context) error
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchUserLogin(ctx context.Context, id string, at time.Time) error
}

// SessionStore persists refresh-token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// Session is a refresh-token record. Only the token hash is stored.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// BoardStore persists boards.
type BoardStore interface {
	CreateBoard(ctx context.Context, board *domain.Board) error
	GetBoard(ctx context.Context, id string) (*domain.Board, error)
	UpdateBoard(ctx context.Context, board *domain.Board) error
	// DeleteBoard cascades to lists, cards, memberships, and invitations.
	DeleteBoard(ctx context.Context, id string) error
	// ListAccessibleBoards returns boards the user owns or is a member of,
	// ordered by creation time.
	ListAccessibleBoards(ctx context.Context, userID string) ([]*domain.Board, error)
}

// ListStore persists lists and their board-scoped ordering.
type ListStore interface {
	// CreateList appends the list at the end of its board (position =
	// sibling count before insertion).
	CreateList(ctx context.Context, list *domain.List) error
	GetList(ctx context.Context, id string) (*domain.List, error)
	RenameList(ctx context.Context, id, title string) error
	// MoveList reorders a list within its board. The requested position is
	// clamped; -1 means the end.
	MoveList(ctx context.Context, id string, newPos int) error
	// DeleteList removes the list, its cards, and compacts sibling
	// positions, all in one transaction. Returns the number of cards removed.
	DeleteList(ctx context.Context, id string) (int, error)
	ListListsByBoard(ctx context.Context, boardID string) ([]*domain.List, error)
	CountLists(ctx context.Context, boardID string) (int, error)
}

// CardStore persists cards and their list-scoped ordering.
type CardStore interface {
	// CreateCard appends the card at the end of its list and records the
	// creator as the sole initial contributor.
	CreateCard(ctx context.Context, card *domain.Card) error
	GetCard(ctx context.Context, id string) (*domain.Card, error)
	// UpdateCard rewrites mutable card fields (title, description,
	// priority, checklist) and records userID as a contributor.
	UpdateCard(ctx context.Context, card *domain.Card, userID string) error
	// MoveCard moves a card within its list or to another list at the
	// requested position (clamped; -1 means the end), recording userID as a
	// contributor. All shifts and the card update happen in one transaction.
	MoveCard(ctx context.Context, cardID, targetListID string, newPos int, userID string) error
	// DeleteCard records userID as a contributor, removes the card, and
	// compacts sibling positions in one transaction.
	DeleteCard(ctx context.Context, cardID, userID string) error
	ListCardsByList(ctx context.Context, listID string) ([]*domain.Card, error)
	// ListCardsByBoard returns all cards on the board ordered by list
	// position, then card position.
	ListCardsByBoard(ctx context.Context, boardID string) ([]*domain.Card, error)
	CountCards(ctx context.Context, listID string) (int, error)
}

// MembershipStore persists non-owner board collaborators.
type MembershipStore interface {
	CreateMembership(ctx context.Context, m *domain.Membership) error
	DeleteMembership(ctx context.Context, boardID, userID string) error
	ListMembers(ctx context.Context, boardID string) ([]*domain.Membership, error)
	IsMember(ctx context.Context, boardID, userID string) (bool, error)
}

// InvitationStore persists board invitations.
type InvitationStore interface {
	// CreateInvitation enforces at most one pending invitation per
	// (board, invitee) pair.
	CreateInvitation(ctx context.Context, inv *domain.Invitation) error
	GetInvitation(ctx context.Context, id string) (*domain.Invitation, error)
	// AcceptInvitation flips the invitation to accepted and creates the
	// membership in one transaction.
	AcceptInvitation(ctx context.Context, inv *domain.Invitation, m *domain.Membership) error
	// UpdateInvitation persists a status flip (decline).
	UpdateInvitation(ctx context.Context, inv *domain.Invitation) error
	ListInvitationsByInvitee(ctx context.Context, inviteeID string) ([]*domain.Invitation, error)
	ListInvitationsByInviter(ctx context.Context, inviterID string) ([]*domain.Invitation, error)
}
