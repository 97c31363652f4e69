package roomsync

import (
	"time"

	"github.com/mcdev12/planningpoker/go/internal/models"
)

// VoteState tracks the local selection against the server's record
type VoteState string

const (
	VoteUnset     VoteState = "unset"
	VotePending   VoteState = "pending"
	VoteConfirmed VoteState = "confirmed"
)

// SelectedVote is this participant's card for one story
type SelectedVote struct {
	Value   models.VoteValue `json:"value,omitempty"`
	StoryID string           `json:"story_id,omitempty"`
	State   VoteState        `json:"state"`
}

func unsetVote() SelectedVote {
	return SelectedVote{State: VoteUnset}
}

// reconcile resynchronizes the selection with a freshly applied snapshot.
// Without a participant id nothing can be matched and the selection is kept.
func (v SelectedVote) reconcile(room *models.Room, participantID string) SelectedVote {
	if participantID == "" {
		return v
	}

	story := room.CurrentStory()
	if story == nil {
		return unsetVote()
	}

	if server := story.VoteFor(participantID); server != nil {
		value := server.Value
		// hidden votes come back without a value before reveal
		if value == "" && v.StoryID == story.ID {
			value = v.Value
		}
		return SelectedVote{Value: value, StoryID: story.ID, State: VoteConfirmed}
	}

	if v.State == VotePending && v.StoryID == story.ID {
		return v
	}
	return unsetVote()
}

// ConfirmPointsPrompt asks the user to seal the revealed estimate
type ConfirmPointsPrompt struct {
	Average    float64               `json:"average"`
	Rounded    int                   `json:"rounded"`
	Discussion *DiscussionSuggestion `json:"discussion,omitempty"`
}

// ExistingStoryPrompt offers to switch to a story that was added twice
type ExistingStoryPrompt struct {
	StoryID     string  `json:"story_id"`
	ExternalID  string  `json:"external_id"`
	Title       string  `json:"title"`
	FinalPoints *string `json:"final_points,omitempty"`
}

func newExistingStoryPrompt(s models.Story) *ExistingStoryPrompt {
	p := &ExistingStoryPrompt{StoryID: s.ID, FinalPoints: s.FinalPoints}
	if s.StoryID != nil {
		p.ExternalID = *s.StoryID
	}
	if s.Title != nil {
		p.Title = *s.Title
	}
	return p
}

// StreamStatus is the lifecycle of the room stream
type StreamStatus string

const (
	StreamIdle       StreamStatus = "idle"
	StreamConnecting StreamStatus = "connecting"
	StreamOpen       StreamStatus = "open"
	StreamClosed     StreamStatus = "closed"
)

// View is a point-in-time copy of everything the controller exposes.
// Room and the prompts are shared, not copied, and must be treated as
// read-only.
type View struct {
	RoomCode      string               `json:"room_code"`
	ParticipantID string               `json:"participant_id,omitempty"`
	Username      string               `json:"username,omitempty"`
	Room          *models.Room         `json:"room,omitempty"`
	Vote          SelectedVote         `json:"selected_vote"`
	ConfirmPoints *ConfirmPointsPrompt `json:"confirm_points,omitempty"`
	ExistingStory *ExistingStoryPrompt `json:"existing_story,omitempty"`
	ResetConfirm  bool                 `json:"reset_confirm"`
	Stream        StreamStatus         `json:"stream"`
	// LastEvent is empty when the snapshot came from a join or refresh
	LastEvent   EventType `json:"last_event,omitempty"`
	LastEventAt time.Time `json:"last_event_at"`
}
