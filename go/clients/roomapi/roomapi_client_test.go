package roomapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcdev12/planningpoker/go/clients"
)

const roomJSON = `{
	"code": "ABC123",
	"session_name": "Planning Session For March 01, 2025",
	"current_story": null,
	"stories": [],
	"participants": [],
	"participants_count": 0,
	"created_at": "2025-03-01T10:00:00Z",
	"updated_at": "2025-03-01T10:00:00Z"
}`

func TestCreateRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/rooms/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req CreateRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.StoryID != "JIRA-1" || req.Title != "Login" {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(roomJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/api")
	room, err := c.CreateRoom(context.Background(), CreateRoomRequest{StoryID: "JIRA-1", Title: "Login"})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if room.Code != "ABC123" {
		t.Errorf("Code = %q, want ABC123", room.Code)
	}
	if room.CurrentStoryID != nil {
		t.Errorf("CurrentStoryID = %v, want nil", *room.CurrentStoryID)
	}
}

func TestJoinRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rooms/ABC123/join/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req JoinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Username != "alice" || req.SessionID != "alice-1" {
			t.Errorf("request = %+v", req)
		}
		w.Write([]byte(`{"participant":{"id":"p-1","username":"alice","connected":true},"room":` + roomJSON + `}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/api/")
	resp, err := c.JoinRoom(context.Background(), "ABC123", JoinRoomRequest{Username: "alice", SessionID: "alice-1"})
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if resp.Participant.ID != "p-1" {
		t.Errorf("participant id = %q, want p-1", resp.Participant.ID)
	}
	if resp.Room.Code != "ABC123" {
		t.Errorf("room code = %q", resp.Room.Code)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetRoom(context.Background(), "NOPE00")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
	var statusErr *clients.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected StatusError with 404 in chain, got %v", err)
	}
}

func TestJoinRoomServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.JoinRoom(context.Background(), "ABC123", JoinRoomRequest{Username: "bob", SessionID: "s"})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrRoomNotFound) {
		t.Error("500 must not be reported as not found")
	}
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	c := NewClient("")
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
}
