package models

import (
	"encoding/json"
	"testing"
)

func ptr(s string) *string { return &s }

func testRoom() *Room {
	return &Room{
		Code:           "ABC123",
		CurrentStoryID: ptr("s-1"),
		Stories: []Story{
			{ID: "s-1", StoryID: ptr("JIRA-1"), Title: ptr("Login"), Votes: []Vote{
				{ID: "v-1", ParticipantID: "p-1", Value: VoteFive},
			}},
			{ID: "s-2", StoryID: ptr("JIRA-2"), FinalPoints: ptr("8")},
			{ID: "s-3", Title: ptr("Spike"), FinalPoints: ptr("?")},
			{ID: "s-4", FinalPoints: ptr("")},
		},
		Participants: []Participant{
			{ID: "p-1", Username: "alice", Connected: true},
			{ID: "p-2", Username: "bob", Connected: true},
			{ID: "p-3", Username: "carol", Connected: false},
		},
	}
}

func TestCurrentStory(t *testing.T) {
	room := testRoom()
	if got := room.CurrentStory(); got == nil || got.ID != "s-1" {
		t.Errorf("CurrentStory() = %v, want s-1", got)
	}

	room.CurrentStoryData = &Story{ID: "s-1", Title: ptr("embedded")}
	if got := room.CurrentStory(); got.Title == nil || *got.Title != "embedded" {
		t.Errorf("CurrentStory() did not prefer embedded data, got %v", got)
	}

	room.CurrentStoryData = &Story{ID: "other"}
	if got := room.CurrentStory(); got.ID != "s-1" || *got.Title != "Login" {
		t.Errorf("CurrentStory() used mismatched embedded data, got %v", got)
	}

	room.CurrentStoryID = ptr("missing")
	if got := room.CurrentStory(); got != nil {
		t.Errorf("CurrentStory() = %v, want nil for unknown id", got)
	}

	room.CurrentStoryID = nil
	if got := room.CurrentStory(); got != nil {
		t.Errorf("CurrentStory() = %v, want nil without pointer", got)
	}

	var nilRoom *Room
	if got := nilRoom.CurrentStory(); got != nil {
		t.Errorf("nil room CurrentStory() = %v, want nil", got)
	}
}

func TestAllConnectedVoted(t *testing.T) {
	room := testRoom()
	if room.AllConnectedVoted() {
		t.Error("AllConnectedVoted() = true with bob missing")
	}

	room.Stories[0].Votes = append(room.Stories[0].Votes, Vote{ID: "v-2", ParticipantID: "p-2"})
	if !room.AllConnectedVoted() {
		t.Error("AllConnectedVoted() = false, disconnected carol should not count")
	}

	room.CurrentStoryID = nil
	if room.AllConnectedVoted() {
		t.Error("AllConnectedVoted() = true without a current story")
	}
}

func TestVotesRevealed(t *testing.T) {
	room := testRoom()
	if room.VotesRevealed() {
		t.Error("VotesRevealed() = true before reveal")
	}
	room.Stories[0].Votes[0].Revealed = true
	if !room.VotesRevealed() {
		t.Error("VotesRevealed() = false after reveal")
	}
}

func TestTotalsAndEstimated(t *testing.T) {
	room := testRoom()
	if got := room.TotalPoints(); got != 8 {
		t.Errorf("TotalPoints() = %d, want 8", got)
	}
	if got := room.EstimatedStories(); got != 2 {
		t.Errorf("EstimatedStories() = %d, want 2", got)
	}
	if got := len(room.ConnectedParticipants()); got != 2 {
		t.Errorf("ConnectedParticipants() = %d, want 2", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		story *Story
		want  string
	}{
		{"id and title", &Story{StoryID: ptr("JIRA-1"), Title: ptr("Login")}, "JIRA-1: Login"},
		{"id only", &Story{StoryID: ptr("JIRA-1")}, "JIRA-1"},
		{"title only", &Story{Title: ptr("Login")}, "Login"},
		{"empty strings", &Story{StoryID: ptr(""), Title: ptr("")}, "Untitled"},
		{"nil story", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.story.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoomDecodesNullablePointers(t *testing.T) {
	raw := `{
		"code": "ABC123",
		"session_name": "Sprint",
		"current_story": null,
		"stories": [{"id": "s-1", "story_id": null, "title": "Login", "final_points": null, "votes": []}],
		"participants": [],
		"participants_count": 0
	}`

	var room Room
	if err := json.Unmarshal([]byte(raw), &room); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if room.CurrentStoryID != nil {
		t.Errorf("CurrentStoryID = %v, want nil", *room.CurrentStoryID)
	}
	if s := room.Stories[0]; s.StoryID != nil || s.Title == nil || *s.Title != "Login" || s.Sealed() {
		t.Errorf("story decoded as %+v", s)
	}
}
