package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	domainerrors "github.com/tasktiles/tasktiles-server/internal/errors"
)

func TestCreateCardDefaultsPriority(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	b := e.board(t, alice, "Work")
	l := e.list(t, alice, b, "To Do")

	c, err := e.cards.CreateCard(ctx, alice.ID, CreateCardRequest{
		ListID: l.ID,
		Title:  "untagged",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, c.Priority)
	assert.Equal(t, alice.ID, c.CreatedBy)
	assert.Equal(t, 0, c.Position)
}

func TestMoveCardToOwnPositionIsNoOp(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	b := e.board(t, alice, "Work")
	l := e.list(t, alice, b, "To Do")
	e.card(t, alice, l, "a")
	c := e.card(t, alice, l, "b")
	e.card(t, alice, l, "c")

	moved, err := e.cards.MoveCard(ctx, c.ID, alice.ID, MoveCardRequest{Position: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position)

	snap, err := e.boards.GetBoard(ctx, b.ID, alice.ID)
	require.NoError(t, err)
	titles := make([]string, 0, 3)
	for _, card := range snap.Lists[0].Cards {
		titles = append(titles, card.Title)
	}
	assert.Equal(t, []string{"a", "b", "c"}, titles)
}

func TestMoveCardAcrossListsConservesCount(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	b := e.board(t, alice, "Work")
	todo := e.list(t, alice, b, "To Do")
	done := e.list(t, alice, b, "Done")

	e.card(t, alice, todo, "first")
	mid := e.card(t, alice, todo, "second")
	e.card(t, alice, todo, "third")

	moved, err := e.cards.MoveCard(ctx, mid.ID, alice.ID, MoveCardRequest{
		TargetListID: done.ID,
		Position:     0,
	})
	require.NoError(t, err)
	assert.Equal(t, done.ID, moved.ListID)
	assert.Equal(t, 0, moved.Position)

	snap, err := e.boards.GetBoard(ctx, b.ID, alice.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Lists[0].Cards, 2)
	assert.Len(t, snap.Lists[1].Cards, 1)
}

func TestMoveCardAcrossBoardsRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	b1 := e.board(t, alice, "One")
	b2 := e.board(t, alice, "Two")
	l1 := e.list(t, alice, b1, "To Do")
	l2 := e.list(t, alice, b2, "To Do")
	c := e.card(t, alice, l1, "stuck")

	_, err := e.cards.MoveCard(ctx, c.ID, alice.ID, MoveCardRequest{
		TargetListID: l2.ID,
		Position:     0,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))

	got, err := e.cards.GetCard(ctx, c.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, l1.ID, got.ListID, "rejected move must not change the card")
}

func TestUpdateCardChecklistAndContributors(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	b := e.board(t, alice, "Work")
	e.share(t, b, alice, bob)
	l := e.list(t, alice, b, "To Do")
	c := e.card(t, alice, l, "task")

	got, err := e.cards.UpdateCard(ctx, c.ID, bob.ID, UpdateCardRequest{
		Title:     "task",
		Priority:  "high",
		Checklist: []string{"draft", "review"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"draft", "review"}, got.Checklist)
	require.Len(t, got.Contributors, 2)
	assert.True(t, got.HasContributor(alice.ID))
	assert.True(t, got.HasContributor(bob.ID))
}

func TestDeleteListReportsCardCount(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	b := e.board(t, alice, "Work")
	todo := e.list(t, alice, b, "To Do")
	e.list(t, alice, b, "Doing")
	e.list(t, alice, b, "Done")
	for _, title := range []string{"a", "b", "c"} {
		e.card(t, alice, todo, title)
	}

	resp, err := e.lists.DeleteList(ctx, todo.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.CardsRemoved)

	snap, err := e.boards.GetBoard(ctx, b.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, snap.Lists, 2)
	assert.Equal(t, 0, snap.Lists[0].Position)
	assert.Equal(t, 1, snap.Lists[1].Position)
}

func TestTodayTasks(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	b := e.board(t, alice, "Work")
	l := e.list(t, alice, b, "To Do")

	e.card(t, alice, l, "fresh card")
	e.card(t, alice, l, "finish this TODAY please")

	now := time.Now()
	tasks, err := e.cards.TodayTasks(ctx, alice.ID, now)
	require.NoError(t, err)
	// Both match: created today, and one also mentions "today".
	assert.Len(t, tasks, 2)

	// A day later only the substring match remains.
	tasks, err = e.cards.TodayTasks(ctx, alice.ID, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "finish this TODAY please", tasks[0].Title)
	assert.Equal(t, "Work", tasks[0].BoardTitle)
	assert.Equal(t, "To Do", tasks[0].ListTitle)
}
