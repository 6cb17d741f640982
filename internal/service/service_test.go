package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/store"
	"github.com/tasktiles/tasktiles-server/internal/store/sqlite"
)

// testEnv bundles the services under test over one temporary store.
type testEnv struct {
	store       store.Store
	boards      *BoardService
	lists       *ListService
	cards       *CardService
	invitations *InvitationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	logger := slog.New(slog.DiscardHandler)
	return &testEnv{
		store:       s,
		boards:      NewBoardService(s, logger),
		lists:       NewListService(s, logger),
		cards:       NewCardService(s, logger),
		invitations: NewInvitationService(s, logger),
	}
}

func (e *testEnv) user(t *testing.T, username string) *domain.User {
	t.Helper()

	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	u.ID = "usr-" + username
	u.InitTimestamps()
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) board(t *testing.T, owner *domain.User, title string) *domain.Board {
	t.Helper()

	b, err := e.boards.CreateBoard(context.Background(), owner.ID, CreateBoardRequest{Title: title})
	require.NoError(t, err)
	return b
}

func (e *testEnv) list(t *testing.T, user *domain.User, board *domain.Board, title string) *domain.List {
	t.Helper()

	l, err := e.lists.CreateList(context.Background(), user.ID, CreateListRequest{
		BoardID: board.ID,
		Title:   title,
	})
	require.NoError(t, err)
	return l
}

func (e *testEnv) card(t *testing.T, user *domain.User, list *domain.List, title string) *domain.Card {
	t.Helper()

	c, err := e.cards.CreateCard(context.Background(), user.ID, CreateCardRequest{
		ListID: list.ID,
		Title:  title,
	})
	require.NoError(t, err)
	return c
}

// share invites the user to the board and accepts on their behalf.
func (e *testEnv) share(t *testing.T, board *domain.Board, owner, invitee *domain.User) {
	t.Helper()

	inv, err := e.invitations.Invite(context.Background(), owner.ID, CreateInvitationRequest{
		BoardID:  board.ID,
		Username: invitee.Username,
	})
	require.NoError(t, err)

	_, err = e.invitations.Accept(context.Background(), inv.ID, invitee.ID)
	require.NoError(t, err)
}
