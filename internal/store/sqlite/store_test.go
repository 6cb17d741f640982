package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	"github.com/tasktiles/tasktiles-server/internal/id"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store, username string) *domain.User {
	t.Helper()

	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test " + username,
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	u.ID = id.MustGenerate("usr")
	u.InitTimestamps()
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func newTestBoard(t *testing.T, s *Store, owner *domain.User, title string) *domain.Board {
	t.Helper()

	b := &domain.Board{
		Title:   title,
		OwnerID: owner.ID,
	}
	b.ID = id.MustGenerate("brd")
	b.InitTimestamps()
	if err := s.CreateBoard(context.Background(), b); err != nil {
		t.Fatalf("create board %s: %v", title, err)
	}
	return b
}

func newTestList(t *testing.T, s *Store, board *domain.Board, title string) *domain.List {
	t.Helper()

	l := &domain.List{
		BoardID: board.ID,
		Title:   title,
	}
	l.ID = id.MustGenerate("lst")
	l.InitTimestamps()
	if err := s.CreateList(context.Background(), l); err != nil {
		t.Fatalf("create list %s: %v", title, err)
	}
	return l
}

func newTestCard(t *testing.T, s *Store, list *domain.List, creator *domain.User, title string) *domain.Card {
	t.Helper()

	c := &domain.Card{
		ListID:    list.ID,
		Title:     title,
		Priority:  domain.PriorityMedium,
		CreatedBy: creator.ID,
	}
	c.ID = id.MustGenerate("crd")
	c.InitTimestamps()
	if err := s.CreateCard(context.Background(), c); err != nil {
		t.Fatalf("create card %s: %v", title, err)
	}
	return c
}

func listTitlesInOrder(t *testing.T, s *Store, boardID string) []string {
	t.Helper()

	lists, err := s.ListListsByBoard(context.Background(), boardID)
	if err != nil {
		t.Fatalf("list lists: %v", err)
	}
	titles := make([]string, len(lists))
	for i, l := range lists {
		if l.Position != i {
			t.Fatalf("list %q has position %d, want %d", l.Title, l.Position, i)
		}
		titles[i] = l.Title
	}
	return titles
}

func cardTitlesInOrder(t *testing.T, s *Store, listID string) []string {
	t.Helper()

	cards, err := s.ListCardsByList(context.Background(), listID)
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	titles := make([]string, len(cards))
	for i, c := range cards {
		if c.Position != i {
			t.Fatalf("card %q has position %d, want %d", c.Title, c.Position, i)
		}
		titles[i] = c.Title
	}
	return titles
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStoreOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(dir, "test.db")

	s1, err := Open(path, logger)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	s2, err := Open(path, logger)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}

func TestForeignKeysOnEveryPoolConnection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice")
	b := newTestBoard(t, s, u, "Project")
	l := newTestList(t, s, b, "To Do")
	newTestCard(t, s, l, u, "Write docs")

	// Pin one connection so later work is forced onto a different one.
	pinned, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("checkout connection: %v", err)
	}
	defer pinned.Close()

	second, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("checkout second connection: %v", err)
	}
	var enabled int
	if err := second.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("query pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d on pooled connection, want 1", enabled)
	}

	if _, err := second.ExecContext(ctx, "DELETE FROM boards WHERE id = ?", b.ID); err != nil {
		t.Fatalf("delete board: %v", err)
	}
	second.Close()

	var lists, cards int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lists").Scan(&lists); err != nil {
		t.Fatalf("count lists: %v", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cards").Scan(&cards); err != nil {
		t.Fatalf("count cards: %v", err)
	}
	if lists != 0 || cards != 0 {
		t.Errorf("orphans after board delete: lists=%d cards=%d, want 0 each", lists, cards)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "alice")

	sess := &store.Session{
		ID:        id.MustGenerate("ses"),
		UserID:    u.ID,
		TokenHash: "hash-1",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := s.GetSessionByTokenHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != u.ID {
		t.Errorf("got user %s, want %s", got.UserID, u.ID)
	}

	expired := &store.Session{
		ID:        id.MustGenerate("ses"),
		UserID:    u.ID,
		TokenHash: "hash-2",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := s.CreateSession(ctx, expired); err != nil {
		t.Fatalf("create expired session: %v", err)
	}

	n, err := s.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}
}
