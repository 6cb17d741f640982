package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/position"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

func TestCreateCardAppendsAndRecordsCreator(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	b := newTestBoard(t, s, u, "Project")
	l := newTestList(t, s, b, "To Do")

	c1 := newTestCard(t, s, l, u, "first")
	c2 := newTestCard(t, s, l, u, "second")
	if c1.Position != 0 || c2.Position != 1 {
		t.Errorf("positions = %d, %d, want 0, 1", c1.Position, c2.Position)
	}

	got, err := s.GetCard(ctx, c1.ID)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if len(got.Contributors) != 1 || got.Contributors[0].UserID != u.ID {
		t.Errorf("contributors = %+v, want creator only", got.Contributors)
	}
	if got.Checklist == nil || len(got.Checklist) != 0 {
		t.Errorf("checklist = %#v, want empty", got.Checklist)
	}
}

func TestMoveCardWithinList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	b := newTestBoard(t, s, u, "Project")
	l := newTestList(t, s, b, "To Do")

	var ids []string
	for _, title := range []string{"a", "b", "c", "d"} {
		ids = append(ids, newTestCard(t, s, l, u, title).ID)
	}

	// Move "d" to the front.
	if err := s.MoveCard(ctx, ids[3], "", 0, u.ID); err != nil {
		t.Fatalf("move card: %v", err)
	}
	got := cardTitlesInOrder(t, s, l.ID)
	if !equalStrings(got, []string{"d", "a", "b", "c"}) {
		t.Errorf("order = %v", got)
	}

	// Move "a" to the end with the sentinel.
	if err := s.MoveCard(ctx, ids[0], "", position.End, u.ID); err != nil {
		t.Fatalf("move card: %v", err)
	}
	got = cardTitlesInOrder(t, s, l.ID)
	if !equalStrings(got, []string{"d", "b", "c", "a"}) {
		t.Errorf("order = %v", got)
	}
}

func TestMoveCardAcrossLists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	b := newTestBoard(t, s, u, "Project")
	todo := newTestList(t, s, b, "To Do")
	done := newTestList(t, s, b, "Done")

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		ids = append(ids, newTestCard(t, s, todo, u, title).ID)
	}

	// Move the middle card into the empty Done list.
	if err := s.MoveCard(ctx, ids[1], done.ID, 0, u.ID); err != nil {
		t.Fatalf("move card: %v", err)
	}

	if got := cardTitlesInOrder(t, s, todo.ID); !equalStrings(got, []string{"a", "c"}) {
		t.Errorf("source order = %v", got)
	}
	if got := cardTitlesInOrder(t, s, done.ID); !equalStrings(got, []string{"b"}) {
		t.Errorf("target order = %v", got)
	}

	// A second transfer into a populated list, past the end.
	if err := s.MoveCard(ctx, ids[0], done.ID, 99, u.ID); err != nil {
		t.Fatalf("move card: %v", err)
	}
	if got := cardTitlesInOrder(t, s, done.ID); !equalStrings(got, []string{"b", "a"}) {
		t.Errorf("target order = %v", got)
	}
	if got := cardTitlesInOrder(t, s, todo.ID); !equalStrings(got, []string{"c"}) {
		t.Errorf("source order = %v", got)
	}
}

func TestMoveCardAcrossBoardsRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")

	b1 := newTestBoard(t, s, u, "One")
	b2 := newTestBoard(t, s, u, "Two")
	l1 := newTestList(t, s, b1, "To Do")
	l2 := newTestList(t, s, b2, "To Do")
	c := newTestCard(t, s, l1, u, "stuck")

	err := s.MoveCard(ctx, c.ID, l2.ID, 0, u.ID)
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}

	// Nothing may change on rejection.
	if got := cardTitlesInOrder(t, s, l1.ID); !equalStrings(got, []string{"stuck"}) {
		t.Errorf("source order = %v", got)
	}
	if n, err := s.CountCards(ctx, l2.ID); err != nil || n != 0 {
		t.Errorf("target count = %d (err %v), want 0", n, err)
	}
}

func TestUpdateCardRecordsContributor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	b := newTestBoard(t, s, alice, "Project")
	l := newTestList(t, s, b, "To Do")
	c := newTestCard(t, s, l, alice, "task")

	c.Title = "task v2"
	c.Priority = domain.PriorityHigh
	c.Checklist = []string{"step one"}
	if err := s.UpdateCard(ctx, c, bob.ID); err != nil {
		t.Fatalf("update card: %v", err)
	}

	got, err := s.GetCard(ctx, c.ID)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if got.Title != "task v2" || got.Priority != domain.PriorityHigh {
		t.Errorf("card = %+v", got)
	}
	if !equalStrings(got.Checklist, []string{"step one"}) {
		t.Errorf("checklist = %v", got.Checklist)
	}
	if len(got.Contributors) != 2 {
		t.Fatalf("contributors = %+v, want alice and bob", got.Contributors)
	}

	// A repeat edit by the same user must not duplicate the record.
	if err := s.UpdateCard(ctx, got, bob.ID); err != nil {
		t.Fatalf("second update: %v", err)
	}
	got, err = s.GetCard(ctx, c.ID)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if len(got.Contributors) != 2 {
		t.Errorf("contributors = %+v, want no duplicates", got.Contributors)
	}
}

func TestDeleteCardCompacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	b := newTestBoard(t, s, u, "Project")
	l := newTestList(t, s, b, "To Do")

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		ids = append(ids, newTestCard(t, s, l, u, title).ID)
	}

	if err := s.DeleteCard(ctx, ids[1], u.ID); err != nil {
		t.Fatalf("delete card: %v", err)
	}
	if got := cardTitlesInOrder(t, s, l.ID); !equalStrings(got, []string{"a", "c"}) {
		t.Errorf("order = %v", got)
	}

	if _, err := s.GetCard(ctx, ids[1]); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get deleted card: got %v, want ErrNotFound", err)
	}
}

func TestListCardsByBoardOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")
	b := newTestBoard(t, s, u, "Project")
	todo := newTestList(t, s, b, "To Do")
	done := newTestList(t, s, b, "Done")

	newTestCard(t, s, done, u, "shipped")
	newTestCard(t, s, todo, u, "first")
	newTestCard(t, s, todo, u, "second")

	cards, err := s.ListCardsByBoard(ctx, b.ID)
	if err != nil {
		t.Fatalf("list cards by board: %v", err)
	}
	var titles []string
	for _, c := range cards {
		titles = append(titles, c.Title)
	}
	if !equalStrings(titles, []string{"first", "second", "shipped"}) {
		t.Errorf("board card order = %v", titles)
	}
}
