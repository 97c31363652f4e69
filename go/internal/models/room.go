package models

import (
	"strconv"
	"time"
)

// Room is the server-owned snapshot of a planning poker room.
// A decoded Room is never mutated; every update replaces it wholesale.
type Room struct {
	Code              string        `json:"code"`
	SessionName       string        `json:"session_name"`
	CurrentStoryID    *string       `json:"current_story"`
	CurrentStoryData  *Story        `json:"current_story_data,omitempty"`
	Stories           []Story       `json:"stories"`
	Participants      []Participant `json:"participants"`
	ParticipantsCount int           `json:"participants_count"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Participant is one person connected to a room
type Participant struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joined_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// Story is a unit of work being estimated.
type Story struct {
	ID          string     `json:"id"`
	StoryID     *string    `json:"story_id"`
	Title       *string    `json:"title"`
	FinalPoints *string    `json:"final_points"`
	EstimatedAt *time.Time `json:"estimated_at"`
	Order       int        `json:"order"`
	Votes       []Vote     `json:"votes"`
	VotesCount  int        `json:"votes_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Vote is one participant's estimate for a story
type Vote struct {
	ID              string    `json:"id"`
	ParticipantID   string    `json:"participant"`
	ParticipantName string    `json:"participant_name"`
	Value           VoteValue `json:"value"`
	Revealed        bool      `json:"revealed"`
	CreatedAt       time.Time `json:"created_at"`
}

// CurrentStory resolves the current story pointer. The embedded
// current_story_data wins when it matches, otherwise the story list is searched.
func (r *Room) CurrentStory() *Story {
	if r == nil || r.CurrentStoryID == nil || *r.CurrentStoryID == "" {
		return nil
	}
	id := *r.CurrentStoryID
	if r.CurrentStoryData != nil && r.CurrentStoryData.ID == id {
		return r.CurrentStoryData
	}
	return r.Story(id)
}

// Story looks up a story by its internal id
func (r *Room) Story(id string) *Story {
	if r == nil {
		return nil
	}
	for i := range r.Stories {
		if r.Stories[i].ID == id {
			return &r.Stories[i]
		}
	}
	return nil
}

// ConnectedParticipants returns the participants whose connectivity flag is set
func (r *Room) ConnectedParticipants() []Participant {
	if r == nil {
		return nil
	}
	connected := make([]Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p.Connected {
			connected = append(connected, p)
		}
	}
	return connected
}

// VotesRevealed reports whether the current story's votes have been revealed
func (r *Room) VotesRevealed() bool {
	story := r.CurrentStory()
	if story == nil {
		return false
	}
	for _, v := range story.Votes {
		if v.Revealed {
			return true
		}
	}
	return false
}

// AllConnectedVoted reports whether every connected participant has a vote on
// the current story. This is the guard callers apply before a reveal.
func (r *Room) AllConnectedVoted() bool {
	story := r.CurrentStory()
	if story == nil {
		return false
	}
	connected := r.ConnectedParticipants()
	if len(connected) == 0 {
		return false
	}
	for _, p := range connected {
		if story.VoteFor(p.ID) == nil {
			return false
		}
	}
	return true
}

// TotalPoints sums the numeric final points of every estimated story
func (r *Room) TotalPoints() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, s := range r.Stories {
		if s.FinalPoints == nil {
			continue
		}
		if n, err := strconv.Atoi(*s.FinalPoints); err == nil {
			total += n
		}
	}
	return total
}

// EstimatedStories counts stories with confirmed final points
func (r *Room) EstimatedStories() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, s := range r.Stories {
		if s.Sealed() {
			count++
		}
	}
	return count
}

// VoteFor returns the vote cast by the participant, or nil
func (s *Story) VoteFor(participantID string) *Vote {
	if s == nil {
		return nil
	}
	for i := range s.Votes {
		if s.Votes[i].ParticipantID == participantID {
			return &s.Votes[i]
		}
	}
	return nil
}

// Sealed reports whether final points have been confirmed for the story
func (s *Story) Sealed() bool {
	return s != nil && s.FinalPoints != nil && *s.FinalPoints != ""
}

// DisplayName renders "ID: title" using whichever parts are present
func (s *Story) DisplayName() string {
	if s == nil {
		return ""
	}
	var id, title string
	if s.StoryID != nil {
		id = *s.StoryID
	}
	if s.Title != nil {
		title = *s.Title
	}
	switch {
	case id != "" && title != "":
		return id + ": " + title
	case id != "":
		return id
	case title != "":
		return title
	default:
		return "Untitled"
	}
}
