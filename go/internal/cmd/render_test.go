package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/roomsync"
)

func TestRenderView(t *testing.T) {
	room := sessionRoom(true)
	room.SessionName = "Sprint 12"
	room.Stories[1].FinalPoints = strPtr("8")
	room.Stories[0].Votes[0].Value = models.VoteFive
	room.Stories[0].Votes[0].Revealed = true
	room.Stories[0].Votes[1].Value = models.VoteThirteen
	room.Stories[0].Votes[1].Revealed = true

	tests := []struct {
		name string
		view roomsync.View
		want []string
	}{
		{
			name: "before join",
			view: roomsync.View{RoomCode: "ABC123", Stream: roomsync.StreamIdle},
			want: []string{"Room ABC123  [idle]", "(no snapshot yet)"},
		},
		{
			name: "revealed round with prompt",
			view: roomsync.View{
				RoomCode:      "ABC123",
				ParticipantID: "p-1",
				Room:          room,
				Stream:        roomsync.StreamOpen,
				Vote:          roomsync.SelectedVote{Value: models.VoteFive, StoryID: "s-1", State: roomsync.VoteConfirmed},
				ConfirmPoints: &roomsync.ConfirmPointsPrompt{
					Average:    9,
					Rounded:    8,
					Discussion: &roomsync.DiscussionSuggestion{
						Message:  "Votes are far apart",
						MinVote:  5,
						MaxVote:  13,
						MinVoter: "alice",
						MaxVoter: "bob",
					},
				},
			},
			want: []string{
				"Room ABC123  Sprint 12  [open]",
				"[x] alice (you)",
				"[x] bob",
				" > 1. JIRA-1: Login",
				"   2. JIRA-2: Logout  = 8",
				"total 8 points, 1/2 estimated",
				"alice            5",
				"bob              13",
				"Your vote: 5",
				"Average 9.0, suggested 8 points",
				"lowest 5 (alice), highest 13 (bob)",
			},
		},
		{
			name: "hidden votes and prompts",
			view: roomsync.View{
				RoomCode:      "ABC123",
				ParticipantID: "p-2",
				Room:          sessionRoom(false),
				Stream:        roomsync.StreamOpen,
				Vote:          roomsync.SelectedVote{Value: models.VoteThree, StoryID: "s-1", State: roomsync.VotePending},
				ExistingStory: &roomsync.ExistingStoryPrompt{StoryID: "s-2", ExternalID: "JIRA-2", Title: "Logout", FinalPoints: strPtr("3")},
				ResetConfirm:  true,
			},
			want: []string{
				"[ ] bob (you)",
				"alice            voted",
				"Your vote: 3 (sending)",
				"Story JIRA-2: Logout already exists with 3 points",
				"Reset all votes for the current story? (yes/no)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			renderView(&buf, tt.view)
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderHidesUnrevealedValues(t *testing.T) {
	room := sessionRoom(false)
	room.Stories[0].Votes[0].Value = models.VoteEight

	var buf bytes.Buffer
	renderView(&buf, roomsync.View{Room: room, Stream: roomsync.StreamOpen})

	if strings.Contains(buf.String(), "alice            8") {
		t.Errorf("unrevealed vote value rendered:\n%s", buf.String())
	}
}
