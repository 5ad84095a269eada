package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	_, ts := newTestApp(t)

	resp := doRequest(t, ts, http.MethodGet, "/healthz", nil)
	expectStatus(t, resp, http.StatusOK)
	if body := decodeBody(t, resp); body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected %s header", requestIDHeader)
	}
}

func TestUpsertAndGetUser(t *testing.T) {
	_, ts := newTestApp(t)

	resp := doRequest(t, ts, http.MethodPost, "/api/users", map[string]any{"external_id": "555", "name": ""})
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if body["name"] != "User555" {
		t.Fatalf("expected default name, got %v", body["name"])
	}
	userID := idOf(t, body["user_id"])

	resp = doRequest(t, ts, http.MethodPost, "/api/users", map[string]any{"external_id": "555", "name": "Ada"})
	expectStatus(t, resp, http.StatusOK)
	body = decodeBody(t, resp)
	if idOf(t, body["user_id"]) != userID || body["name"] != "Ada" {
		t.Fatalf("expected rename of user %d, got %v", userID, body)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/users/"+itoa(userID), nil)
	expectStatus(t, resp, http.StatusOK)
	body = decodeBody(t, resp)
	if body["exists"] != true || body["name"] != "Ada" {
		t.Fatalf("unexpected user body %v", body)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/users/999", nil)
	expectStatus(t, resp, http.StatusOK)
	if body := decodeBody(t, resp); body["exists"] != false {
		t.Fatalf("expected exists=false, got %v", body)
	}
}

func TestUpsertUserValidation(t *testing.T) {
	_, ts := newTestApp(t)

	resp := doRequest(t, ts, http.MethodPost, "/api/users", map[string]any{"external_id": "   "})
	body := expectError(t, resp, http.StatusBadRequest, "validation")
	if body["error"] != "external_id is required" {
		t.Fatalf("unexpected message %v", body["error"])
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/users", map[string]any{
		"external_id": "1",
		"name":        strings.Repeat("n", 65),
	})
	expectError(t, resp, http.StatusBadRequest, "validation")
}

func TestCreateRoomAndState(t *testing.T) {
	_, ts := newTestApp(t)
	room := createRoom(t, ts, "1", "Owner")

	resp := doRequest(t, ts, http.MethodGet, roomPath(room.ID, ""), nil)
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if body["room_code"] != room.Code || body["status"] != "active" {
		t.Fatalf("unexpected room state %v", body)
	}
	players, ok := body["players"].([]any)
	if !ok || len(players) != 1 {
		t.Fatalf("expected one player, got %v", body["players"])
	}
	owner := players[0].(map[string]any)
	if owner["name"] != "Owner" || owner["super_cards"] != float64(3) {
		t.Fatalf("unexpected owner %v", owner)
	}
	if body["current_round"] != nil {
		t.Fatalf("expected no current round, got %v", body["current_round"])
	}
}

func TestJoinRoom(t *testing.T) {
	_, ts := newTestApp(t)
	room := createRoom(t, ts, "1", "Owner")

	userID, cards := joinRoom(t, ts, strings.ToLower(room.Code), "2", "Guest")
	if cards != 3 {
		t.Fatalf("expected 3 super cards, got %d", cards)
	}
	againID, _ := joinRoom(t, ts, room.Code, "2", "Guest")
	if againID != userID {
		t.Fatalf("expected same user on rejoin, got %d and %d", userID, againID)
	}

	body := decodeBody(t, doRequest(t, ts, http.MethodGet, roomPath(room.ID, ""), nil))
	if players := body["players"].([]any); len(players) != 2 {
		t.Fatalf("expected two players, got %d", len(players))
	}

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]any{
		"room_code":   "ZZZZZZ",
		"external_id": "3",
	})
	expectError(t, resp, http.StatusNotFound, "not_found")

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]any{
		"room_code":   "no",
		"external_id": "3",
	})
	body = expectError(t, resp, http.StatusBadRequest, "validation")
	if body["error"] != "room_code must be 6 letters or digits" {
		t.Fatalf("unexpected message %v", body["error"])
	}
}

func TestRoomNotFound(t *testing.T) {
	_, ts := newTestApp(t)

	expectError(t, doRequest(t, ts, http.MethodGet, "/api/rooms/404", nil), http.StatusNotFound, "not_found")
	expectError(t, doRequest(t, ts, http.MethodGet, "/api/rooms/abc", nil), http.StatusNotFound, "not_found")
	expectError(t, doRequest(t, ts, http.MethodGet, "/api/rooms/404/question", nil), http.StatusNotFound, "not_found")
	expectError(t, doRequest(t, ts, http.MethodPost, "/api/rooms/404/round/close", nil), http.StatusNotFound, "not_found")
}

func TestQuestionLifecycle(t *testing.T) {
	_, ts := newTestApp(t)
	room := createRoom(t, ts, "1", "Owner")

	resp := doRequest(t, ts, http.MethodGet, roomPath(room.ID, "/question"), nil)
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if body["status"] != "idle" || body["round_id"] != nil || body["text"] != nil {
		t.Fatalf("expected idle question, got %v", body)
	}
	if _, ok := body["round_id"]; !ok {
		t.Fatalf("expected explicit null round_id, got %v", body)
	}

	roundID := setQuestion(t, ts, room.ID, "  Best snack?  ")
	body = decodeBody(t, doRequest(t, ts, http.MethodGet, roomPath(room.ID, "/question"), nil))
	if idOf(t, body["round_id"]) != roundID || body["text"] != "Best snack?" {
		t.Fatalf("unexpected current question %v", body)
	}

	resp = doRequest(t, ts, http.MethodPost, roomPath(room.ID, "/round/close"), nil)
	expectStatus(t, resp, http.StatusOK)
	if body := decodeBody(t, resp); body["ok"] != true || body["closed"] != true {
		t.Fatalf("unexpected close body %v", body)
	}
	body = decodeBody(t, doRequest(t, ts, http.MethodGet, roomPath(room.ID, "/question"), nil))
	if body["status"] != "discussion" {
		t.Fatalf("expected discussion, got %v", body["status"])
	}

	resp = doRequest(t, ts, http.MethodPost, roomPath(room.ID, "/question"), map[string]any{"text": "   "})
	expectError(t, resp, http.StatusBadRequest, "validation")
	resp = doRequest(t, ts, http.MethodPost, roomPath(room.ID, "/question"), map[string]any{"text": strings.Repeat("q", 201)})
	expectError(t, resp, http.StatusBadRequest, "validation")
}

func TestSubmitAnswerErrors(t *testing.T) {
	_, ts := newTestApp(t)
	room := createRoom(t, ts, "1", "Owner")
	roundID := setQuestion(t, ts, room.ID, "Q?")
	submitAnswer(t, ts, room.ID, roundID, room.UserID, "first")

	path := roomPath(room.ID, "/answers")
	resp := doRequest(t, ts, http.MethodPost, path, map[string]any{
		"round_id": roundID, "author_id": room.UserID, "text": "second",
	})
	expectError(t, resp, http.StatusConflict, "conflict")

	resp = doRequest(t, ts, http.MethodPost, path, map[string]any{"author_id": room.UserID, "text": "x"})
	body := expectError(t, resp, http.StatusBadRequest, "validation")
	if body["error"] != "round_id is required" {
		t.Fatalf("unexpected message %v", body["error"])
	}

	resp = doRequest(t, ts, http.MethodPost, path, map[string]any{
		"round_id": 999, "author_id": room.UserID, "text": "x",
	})
	expectError(t, resp, http.StatusNotFound, "not_found")

	doRequest(t, ts, http.MethodPost, roomPath(room.ID, "/round/close"), nil)
	guestID, _ := joinRoom(t, ts, room.Code, "2", "Guest")
	resp = doRequest(t, ts, http.MethodPost, path, map[string]any{
		"round_id": roundID, "author_id": guestID, "text": "late",
	})
	expectError(t, resp, http.StatusConflict, "invalid_state")
}

func TestListAnswersRequiresRound(t *testing.T) {
	_, ts := newTestApp(t)
	room := createRoom(t, ts, "1", "Owner")

	resp := doRequest(t, ts, http.MethodGet, roomPath(room.ID, "/answers"), nil)
	expectError(t, resp, http.StatusBadRequest, "validation")

	resp = doRequest(t, ts, http.MethodGet, roomPath(room.ID, "/answers?round_id=77"), nil)
	expectError(t, resp, http.StatusNotFound, "not_found")
}

func TestRevealErrors(t *testing.T) {
	_, ts := newTestApp(t)
	room := createRoom(t, ts, "1", "Owner")
	roundID := setQuestion(t, ts, room.ID, "Q?")
	answerID := submitAnswer(t, ts, room.ID, roundID, room.UserID, "mine")

	path := roomPath(room.ID, "/reveal")
	resp := doRequest(t, ts, http.MethodPost, path, map[string]any{
		"round_id": roundID, "answer_id": answerID, "actor_id": room.UserID,
	})
	expectError(t, resp, http.StatusForbidden, "forbidden")

	outsider := decodeBody(t, doRequest(t, ts, http.MethodPost, "/api/users", map[string]any{"external_id": "x"}))
	resp = doRequest(t, ts, http.MethodPost, path, map[string]any{
		"round_id": roundID, "answer_id": answerID, "actor_id": idOf(t, outsider["user_id"]),
	})
	expectError(t, resp, http.StatusForbidden, "forbidden")

	resp = doRequest(t, ts, http.MethodPost, path, map[string]any{
		"round_id": roundID, "answer_id": 999, "actor_id": room.UserID,
	})
	expectError(t, resp, http.StatusNotFound, "not_found")

	resp = doRequest(t, ts, http.MethodPost, path, map[string]any{"round_id": roundID})
	expectError(t, resp, http.StatusBadRequest, "validation")
}

func TestCloseRoom(t *testing.T) {
	_, ts := newTestApp(t)
	room := createRoom(t, ts, "1", "Owner")
	guestID, _ := joinRoom(t, ts, room.Code, "2", "Guest")

	path := roomPath(room.ID, "/close")
	expectError(t, doRequest(t, ts, http.MethodPost, path, map[string]any{"actor_id": guestID}), http.StatusForbidden, "forbidden")

	resp := doRequest(t, ts, http.MethodPost, path, map[string]any{"actor_id": room.UserID})
	expectStatus(t, resp, http.StatusOK)

	expectError(t, doRequest(t, ts, http.MethodPost, path, map[string]any{"actor_id": room.UserID}), http.StatusConflict, "invalid_state")

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]any{"room_code": room.Code, "external_id": "3"})
	expectError(t, resp, http.StatusConflict, "invalid_state")

	resp = doRequest(t, ts, http.MethodPost, roomPath(room.ID, "/question"), map[string]any{"text": "Q?"})
	expectError(t, resp, http.StatusConflict, "invalid_state")

	body := decodeBody(t, doRequest(t, ts, http.MethodGet, roomPath(room.ID, ""), nil))
	if body["status"] != "closed" {
		t.Fatalf("expected closed room, got %v", body["status"])
	}
}

func TestRoomQR(t *testing.T) {
	_, ts := newTestApp(t)
	room := createRoom(t, ts, "1", "Owner")

	resp := doRequest(t, ts, http.MethodGet, roomPath(room.ID, "/qr"), nil)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("expected PNG data")
	}

	expectError(t, doRequest(t, ts, http.MethodGet, "/api/rooms/999/qr", nil), http.StatusNotFound, "not_found")
}

func TestJoinURL(t *testing.T) {
	srv := &Server{}
	srv.cfg.PublicURL = "https://party.example"
	if got := srv.joinURL("AB12CD"); got != "https://party.example/?room=AB12CD" {
		t.Fatalf("unexpected join url %q", got)
	}
}

func TestRoomEvents(t *testing.T) {
	_, ts := newTestApp(t)
	room := createRoom(t, ts, "1", "Owner")
	joinRoom(t, ts, room.Code, "2", "Guest")
	setQuestion(t, ts, room.ID, "Q?")

	resp := doRequest(t, ts, http.MethodGet, roomPath(room.ID, "/events"), nil)
	expectStatus(t, resp, http.StatusOK)
	events := decodeList(t, resp)
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0]["type"] != eventPlayerJoined || events[1]["type"] != eventQuestionSet {
		t.Fatalf("unexpected event order %v", events)
	}
	payload := events[0]["payload"].(map[string]any)
	if payload["name"] != "Guest" {
		t.Fatalf("unexpected player_joined payload %v", payload)
	}

	events = decodeList(t, doRequest(t, ts, http.MethodGet, roomPath(room.ID, "/events?limit=1"), nil))
	if len(events) != 1 || events[0]["type"] != eventQuestionSet {
		t.Fatalf("expected newest event only, got %v", events)
	}

	expectError(t, doRequest(t, ts, http.MethodGet, roomPath(room.ID, "/events?limit=500"), nil), http.StatusBadRequest, "validation")
}
