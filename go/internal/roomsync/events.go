package roomsync

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mcdev12/planningpoker/go/internal/models"
)

// EventType is the "type" tag of an inbound stream message
type EventType string

const (
	EventTypeVoteCast        EventType = "vote_cast"
	EventTypeVotesRevealed   EventType = "votes_revealed"
	EventTypeRoomReset       EventType = "room_reset"
	EventTypePointsConfirmed EventType = "points_confirmed"
	EventTypeStoryAdded      EventType = "story_added"
	EventTypeStoryChanged    EventType = "story_changed"
	EventTypeStoryExists     EventType = "story_exists"
	EventTypeUserJoined      EventType = "user_joined"
	EventTypeUserLeft        EventType = "user_left"
)

// Event is one decoded inbound message. The set of implementations is closed:
// *RoomEvent, *VotesRevealedEvent and *StoryExistsEvent.
type Event interface {
	Type() EventType
	event()
}

// RoomEvent is any event whose only effect is replacing the room snapshot
type RoomEvent struct {
	EventType EventType
	Room      *models.Room

	// Informational fields some event types carry
	ParticipantID string
	Username      string
	HasVoted      *bool
	Story         *models.Story
}

// VotesRevealedEvent carries the revealed snapshot and, when the votes had a
// numeric average, the suggested points.
type VotesRevealedEvent struct {
	Room       *models.Room
	Average    *float64
	Rounded    *int
	Discussion *DiscussionSuggestion
}

// StoryExistsEvent is sent only to the requester when an added story id is
// already present in the room.
type StoryExistsEvent struct {
	Story models.Story
	Room  *models.Room
}

// DiscussionSuggestion flags a wide spread between the lowest and highest votes
type DiscussionSuggestion struct {
	Message     string `json:"message"`
	MinVote     int    `json:"min_vote"`
	MaxVote     int    `json:"max_vote"`
	MinVoter    string `json:"min_voter"`
	MaxVoter    string `json:"max_voter"`
	SpreadLevel string `json:"spread_level"`
}

func (e *RoomEvent) Type() EventType          { return e.EventType }
func (e *VotesRevealedEvent) Type() EventType { return EventTypeVotesRevealed }
func (e *StoryExistsEvent) Type() EventType   { return EventTypeStoryExists }

func (*RoomEvent) event()          {}
func (*VotesRevealedEvent) event() {}
func (*StoryExistsEvent) event()   {}

// wireEvent is the union of every field an inbound message may carry
type wireEvent struct {
	Type          EventType             `json:"type"`
	Room          *models.Room          `json:"room"`
	ParticipantID string                `json:"participant_id"`
	Username      string                `json:"username"`
	HasVoted      *bool                 `json:"has_voted"`
	Story         *models.Story         `json:"story"`
	Average       *float64              `json:"average"`
	Rounded       *float64              `json:"rounded"`
	Discussion    *DiscussionSuggestion `json:"discussion_suggestion"`
}

// ParseEvent decodes one inbound message. Every error wraps ErrMalformedEvent.
func ParseEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	switch w.Type {
	case EventTypeVoteCast, EventTypeRoomReset, EventTypePointsConfirmed,
		EventTypeStoryAdded, EventTypeStoryChanged, EventTypeUserJoined, EventTypeUserLeft:
		if w.Room == nil {
			return nil, fmt.Errorf("%w: %s without room payload", ErrMalformedEvent, w.Type)
		}
		return &RoomEvent{
			EventType:     w.Type,
			Room:          w.Room,
			ParticipantID: w.ParticipantID,
			Username:      w.Username,
			HasVoted:      w.HasVoted,
			Story:         w.Story,
		}, nil

	case EventTypeVotesRevealed:
		if w.Room == nil {
			return nil, fmt.Errorf("%w: %s without room payload", ErrMalformedEvent, w.Type)
		}
		e := &VotesRevealedEvent{
			Room:       w.Room,
			Average:    w.Average,
			Discussion: w.Discussion,
		}
		if w.Rounded != nil {
			rounded := int(math.Round(*w.Rounded))
			e.Rounded = &rounded
		}
		return e, nil

	case EventTypeStoryExists:
		if w.Story == nil {
			return nil, fmt.Errorf("%w: %s without story", ErrMalformedEvent, w.Type)
		}
		return &StoryExistsEvent{Story: *w.Story, Room: w.Room}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)

	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, w.Type)
	}
}
