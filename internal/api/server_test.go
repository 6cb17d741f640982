package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktiles/tasktiles-server/internal/assistant"
	"github.com/tasktiles/tasktiles-server/internal/auth"
	"github.com/tasktiles/tasktiles-server/internal/ratelimit"
	"github.com/tasktiles/tasktiles-server/internal/service"
	"github.com/tasktiles/tasktiles-server/internal/store/sqlite"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// fakeLLM lets handler tests drive the assistant without a network call.
type fakeLLM struct {
	decision *assistant.Decision
}

func (f *fakeLLM) Decide(_ context.Context, _ assistant.DecideRequest) (*assistant.Decision, error) {
	return f.decision, nil
}

type testServer struct {
	*Server
	llm *fakeLLM
}

// setupTestServer creates a test server with all dependencies over a
// temporary database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	limiter := ratelimit.New(100, 100)
	t.Cleanup(limiter.Stop)

	authService := service.NewAuthService(s, tokens, limiter, logger)
	boardService := service.NewBoardService(s, logger)
	listService := service.NewListService(s, logger)
	cardService := service.NewCardService(s, logger)
	invitationService := service.NewInvitationService(s, logger)

	llm := &fakeLLM{}
	dispatcher := assistant.NewDispatcher(boardService, listService, cardService, llm, logger)

	server := NewServer(s, authService, boardService, listService, cardService, invitationService, dispatcher, []string{"*"}, logger)
	return &testServer{Server: server, llm: llm}
}

// do runs one request against the server and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

// register creates an account and returns its access token and user ID.
func (ts *testServer) register(t *testing.T, username string) (token, userID string) {
	t.Helper()

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "correct horse battery",
		"full_name": username,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	data := envelope["data"].(map[string]any)
	token = data["access_token"].(string)
	userID = data["user"].(map[string]any)["id"].(string)
	return token, userID
}

// createBoard makes a board over the API and returns its ID.
func (ts *testServer) createBoard(t *testing.T, token, title string) string {
	t.Helper()

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/boards/", token, map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, rec.Code)
	return envelope["data"].(map[string]any)["id"].(string)
}

// createList makes a list over the API and returns its ID.
func (ts *testServer) createList(t *testing.T, token, boardID, title string) string {
	t.Helper()

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/lists/", token, map[string]any{
		"board_id": boardID,
		"title":    title,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return envelope["data"].(map[string]any)["id"].(string)
}

// createCard makes a card over the API and returns its ID.
func (ts *testServer) createCard(t *testing.T, token, listID, title string) string {
	t.Helper()

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/cards/", token, map[string]any{
		"list_id": listID,
		"title":   title,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return envelope["data"].(map[string]any)["id"].(string)
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	rec, envelope := ts.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "healthy", data["status"])
}

func TestAuthRequired(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/api/v1/boards/", "/api/v1/users/me", "/api/v1/cards/today"} {
		rec, _ := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	ts := setupTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCurrentUser(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.register(t, "alice")

	rec, envelope := ts.do(t, http.MethodGet, "/api/v1/users/me", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, userID, data["id"])
	assert.Equal(t, "alice", data["username"])
	_, leaked := data["password_hash"]
	assert.False(t, leaked)
}

func TestLoginAndRefreshFlow(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "alice")

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	refresh := envelope["data"].(map[string]any)["refresh_token"].(string)

	rec, envelope = ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, envelope["data"].(map[string]any)["access_token"])

	// The spent token is single use.
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": refresh,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "alice")

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, envelope["success"])
}

func TestBoardLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "alice")

	boardID := ts.createBoard(t, token, "Work")
	listID := ts.createList(t, token, boardID, "To Do")
	ts.createCard(t, token, listID, "Ship release")

	rec, envelope := ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/boards/%s", boardID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := envelope["data"].(map[string]any)
	lists := data["lists"].([]any)
	require.Len(t, lists, 1)
	cards := lists[0].(map[string]any)["cards"].([]any)
	require.Len(t, cards, 1)
	assert.Equal(t, "Ship release", cards[0].(map[string]any)["title"])

	rec, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/boards/%s", boardID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/boards/%s", boardID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoardAccessDeniedLooksLikeMissing(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.register(t, "alice")
	bobToken, _ := ts.register(t, "bob")

	boardID := ts.createBoard(t, aliceToken, "Private")

	rec, _ := ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/boards/%s", boardID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationErrorEnvelope(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "alice")

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/boards/", token, map[string]any{"title": ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", envelope["code"])
	assert.Equal(t, false, envelope["success"])
}

func TestMoveCardEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "alice")
	boardID := ts.createBoard(t, token, "Work")
	todoID := ts.createList(t, token, boardID, "To Do")
	doneID := ts.createList(t, token, boardID, "Done")
	cardID := ts.createCard(t, token, todoID, "Ship release")

	rec, envelope := ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/cards/%s/move", cardID), token, map[string]any{
		"target_list_id": doneID,
		"position":       -1,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, doneID, data["list_id"])
	assert.Equal(t, float64(0), data["position"])
}

func TestDeleteListReportsCards(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "alice")
	boardID := ts.createBoard(t, token, "Work")
	listID := ts.createList(t, token, boardID, "To Do")
	ts.createCard(t, token, listID, "a")
	ts.createCard(t, token, listID, "b")

	rec, envelope := ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/lists/%s", listID), token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, float64(2), data["cards_removed"])
}

func TestInvitationFlowOverAPI(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.register(t, "alice")
	bobToken, bobID := ts.register(t, "bob")

	boardID := ts.createBoard(t, aliceToken, "Shared")

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/invitations/", aliceToken, map[string]any{
		"board_id": boardID,
		"username": "bob",
		"message":  "join me",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	inviteID := envelope["data"].(map[string]any)["id"].(string)

	rec, envelope = ts.do(t, http.MethodGet, "/api/v1/invitations/received", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, envelope["data"].([]any), 1)

	rec, _ = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/invitations/%s/accept", inviteID), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Bob can now read the board.
	rec, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/boards/%s", boardID), bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Members roster shows bob; alice removes him.
	rec, envelope = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/boards/%s/members", boardID), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, envelope["data"].([]any), 1)

	rec, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/boards/%s/members/%s", boardID, bobID), aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/boards/%s", boardID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTodayTasksEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "alice")
	boardID := ts.createBoard(t, token, "Work")
	listID := ts.createList(t, token, boardID, "To Do")
	ts.createCard(t, token, listID, "finish report today")

	rec, envelope := ts.do(t, http.MethodGet, "/api/v1/cards/today", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	tasks := envelope["data"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, "finish report today", tasks[0].(map[string]any)["title"])
}

func TestAssistantChatEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "alice")
	ts.createBoard(t, token, "Work")

	ts.llm.decision = &assistant.Decision{
		Intent: assistant.IntentCreateList,
		Slots:  map[string]any{"name": "Doing"},
	}

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/assistant/chat", token, map[string]any{
		"message": "add a Doing column",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, assistant.ActionListCreated, data["action"])
	assert.Contains(t, data["reply"], "Doing")
}

func TestAssistantChatRequiresMessage(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "alice")

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/assistant/chat", token, map[string]any{
		"message": "",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", envelope["code"])
}
