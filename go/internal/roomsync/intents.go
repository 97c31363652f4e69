package roomsync

import "github.com/mcdev12/planningpoker/go/internal/models"

// Outbound message types
const (
	IntentVote                  = "vote"
	IntentReveal                = "reveal"
	IntentReset                 = "reset"
	IntentAddStory              = "add_story"
	IntentChangeStory           = "change_story"
	IntentSwitchToExistingStory = "switch_to_existing_story"
	IntentConfirmPoints         = "confirm_points"
	IntentUserJoined            = "user_joined"
	IntentUserLeft              = "user_left"
)

type typedMessage struct {
	Type string `json:"type"`
}

type voteMessage struct {
	Type          string           `json:"type"`
	ParticipantID string           `json:"participant_id"`
	StoryID       string           `json:"story_id"`
	Value         models.VoteValue `json:"value"`
}

type addStoryMessage struct {
	Type    string `json:"type"`
	StoryID string `json:"story_id"`
	Title   string `json:"title"`
}

type storyMessage struct {
	Type    string `json:"type"`
	StoryID string `json:"story_id"`
}

type confirmPointsMessage struct {
	Type   string `json:"type"`
	Points string `json:"points"`
}

type userJoinedMessage struct {
	Type          string `json:"type"`
	Username      string `json:"username"`
	ParticipantID string `json:"participant_id"`
}

type userLeftMessage struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participant_id"`
}
