package roomsync

import (
	"testing"

	"github.com/mcdev12/planningpoker/go/internal/models"
)

func TestReconcile(t *testing.T) {
	room := newRoom("s-1",
		newStory("s-1", "JIRA-1", "Login", newVote("p-1", models.VoteThree, false)),
		newStory("s-2", "JIRA-2", "Logout"))
	hidden := newRoom("s-1", newStory("s-1", "JIRA-1", "Login", newVote("p-1", "", false)))
	empty := newRoom("s-2", newStory("s-2", "JIRA-2", "Logout"))
	noStory := newRoom("")

	pending := SelectedVote{Value: models.VoteFive, StoryID: "s-1", State: VotePending}
	pendingS2 := SelectedVote{Value: models.VoteFive, StoryID: "s-2", State: VotePending}
	confirmedS2 := SelectedVote{Value: models.VoteFive, StoryID: "s-2", State: VoteConfirmed}

	tests := []struct {
		name          string
		current       SelectedVote
		room          *models.Room
		participantID string
		want          SelectedVote
	}{
		{
			name:          "unknown participant skips reconciliation",
			current:       pending,
			room:          noStory,
			participantID: "",
			want:          pending,
		},
		{
			name:          "server vote wins",
			current:       pending,
			room:          room,
			participantID: "p-1",
			want:          SelectedVote{Value: models.VoteThree, StoryID: "s-1", State: VoteConfirmed},
		},
		{
			name:          "hidden server vote keeps local value",
			current:       pending,
			room:          hidden,
			participantID: "p-1",
			want:          SelectedVote{Value: models.VoteFive, StoryID: "s-1", State: VoteConfirmed},
		},
		{
			name:          "pending on current story waits for echo",
			current:       pendingS2,
			room:          empty,
			participantID: "p-1",
			want:          pendingS2,
		},
		{
			name:          "confirmed vote gone from server",
			current:       confirmedS2,
			room:          empty,
			participantID: "p-1",
			want:          unsetVote(),
		},
		{
			name:          "selection for another story",
			current:       pending,
			room:          empty,
			participantID: "p-1",
			want:          unsetVote(),
		},
		{
			name:          "no current story",
			current:       pending,
			room:          noStory,
			participantID: "p-1",
			want:          unsetVote(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.current.reconcile(tt.room, tt.participantID); got != tt.want {
				t.Errorf("reconcile = %+v, want %+v", got, tt.want)
			}
		})
	}
}
