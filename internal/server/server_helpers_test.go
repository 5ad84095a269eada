package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

type testRoom struct {
	ID     uint
	Code   string
	UserID uint
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	var body []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func expectStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected status %d, got %d", status, resp.StatusCode)
	}
}

// expectError checks status and kind of an error response.
func expectError(t *testing.T, resp *http.Response, status int, kind string) map[string]any {
	t.Helper()
	expectStatus(t, resp, status)
	body := decodeBody(t, resp)
	if body["kind"] != kind {
		t.Fatalf("expected kind %q, got %v (error=%v)", kind, body["kind"], body["error"])
	}
	if _, ok := body["error"].(string); !ok {
		t.Fatalf("expected error message, got %v", body["error"])
	}
	return body
}

func idOf(t *testing.T, value any) uint {
	t.Helper()
	number, ok := value.(float64)
	if !ok || number <= 0 {
		t.Fatalf("expected positive id, got %v", value)
	}
	return uint(number)
}

func roomPath(roomID uint, suffix string) string {
	return "/api/rooms/" + strconv.FormatUint(uint64(roomID), 10) + suffix
}

func createRoom(t *testing.T, ts *httptest.Server, externalID, name string) testRoom {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]any{
		"external_id": externalID,
		"name":        name,
	})
	expectStatus(t, resp, http.StatusCreated)
	body := decodeBody(t, resp)
	code, ok := body["room_code"].(string)
	if !ok || len(code) != 6 {
		t.Fatalf("expected 6-char room code, got %v", body["room_code"])
	}
	return testRoom{ID: idOf(t, body["room_id"]), Code: code, UserID: idOf(t, body["user_id"])}
}

func joinRoom(t *testing.T, ts *httptest.Server, code, externalID, name string) (userID uint, cards int) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/join", map[string]any{
		"room_code":   code,
		"external_id": externalID,
		"name":        name,
	})
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	idOf(t, body["player_id"])
	return idOf(t, body["user_id"]), int(body["super_cards"].(float64))
}

func setQuestion(t *testing.T, ts *httptest.Server, roomID uint, text string) uint {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, roomPath(roomID, "/question"), map[string]any{"text": text})
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if body["status"] != "collecting" {
		t.Fatalf("expected collecting round, got %v", body["status"])
	}
	return idOf(t, body["round_id"])
}

func submitAnswer(t *testing.T, ts *httptest.Server, roomID, roundID, authorID uint, text string) uint {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, roomPath(roomID, "/answers"), map[string]any{
		"round_id":  roundID,
		"author_id": authorID,
		"text":      text,
	})
	expectStatus(t, resp, http.StatusOK)
	return idOf(t, decodeBody(t, resp)["answer_id"])
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
