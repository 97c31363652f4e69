package roomsync

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcdev12/planningpoker/go/internal/models"
)

// Vote sends this participant's card for the current story and marks it as
// pending until the server echoes it back.
func (c *Controller) Vote(value models.VoteValue) error {
	if !value.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVote, value)
	}

	var storyID string
	return c.send(IntentVote,
		func() (interface{}, error) {
			story := c.room.CurrentStory()
			if story == nil {
				return nil, ErrNoCurrentStory
			}
			storyID = story.ID
			return voteMessage{
				Type:          IntentVote,
				ParticipantID: c.participantID,
				StoryID:       story.ID,
				Value:         value,
			}, nil
		},
		func() {
			c.vote = SelectedVote{Value: value, StoryID: storyID, State: VotePending}
		},
	)
}

// Reveal asks the server to disclose all votes on the current story. Whether
// everyone has voted is the caller's concern; see models.Room.AllConnectedVoted.
func (c *Controller) Reveal() error {
	return c.sendMessage(IntentReveal, typedMessage{Type: IntentReveal})
}

// RequestReset opens the reset confirmation prompt
func (c *Controller) RequestReset() {
	c.update(func() bool {
		if c.resetConfirm {
			return false
		}
		c.resetConfirm = true
		return true
	})
}

// CancelReset closes the reset confirmation prompt
func (c *Controller) CancelReset() {
	c.update(func() bool {
		if !c.resetConfirm {
			return false
		}
		c.resetConfirm = false
		return true
	})
}

// Reset clears the votes of the current story
func (c *Controller) Reset() error {
	return c.send(IntentReset, constant(typedMessage{Type: IntentReset}), func() {
		c.vote = unsetVote()
		c.resetConfirm = false
	})
}

// RejectPoints discards the revealed round so everyone can vote again
func (c *Controller) RejectPoints() error {
	return c.send(IntentReset, constant(typedMessage{Type: IntentReset}), func() {
		c.vote = unsetVote()
		c.confirm = nil
		c.resetConfirm = false
	})
}

// DismissConfirmPoints closes the confirm-points prompt without sending anything
func (c *Controller) DismissConfirmPoints() {
	c.update(func() bool {
		if c.confirm == nil {
			return false
		}
		c.confirm = nil
		return true
	})
}

// AddStory adds a story to the room. Both fields are optional; the server
// decides what an empty story looks like.
func (c *Controller) AddStory(storyID, title string) error {
	return c.sendMessage(IntentAddStory, addStoryMessage{
		Type:    IntentAddStory,
		StoryID: strings.TrimSpace(storyID),
		Title:   strings.TrimSpace(title),
	})
}

// ChangeStory moves the room's current story pointer
func (c *Controller) ChangeStory(storyID string) error {
	return c.sendMessage(IntentChangeStory, storyMessage{Type: IntentChangeStory, StoryID: storyID})
}

// SwitchToExistingStory resolves an existing-story prompt by making that story current
func (c *Controller) SwitchToExistingStory(storyID string) error {
	return c.send(IntentSwitchToExistingStory,
		constant(storyMessage{Type: IntentSwitchToExistingStory, StoryID: storyID}),
		func() { c.existing = nil },
	)
}

// DismissExistingStory closes the existing-story prompt
func (c *Controller) DismissExistingStory() {
	c.update(func() bool {
		if c.existing == nil {
			return false
		}
		c.existing = nil
		return true
	})
}

// ConfirmPoints seals the current story's final points
func (c *Controller) ConfirmPoints(points string) error {
	points = strings.TrimSpace(points)
	if points == "" {
		return fmt.Errorf("%w: points are required", ErrInvalidPoints)
	}
	return c.send(IntentConfirmPoints,
		constant(confirmPointsMessage{Type: IntentConfirmPoints, Points: points}),
		func() { c.confirm = nil },
	)
}

func (c *Controller) sendMessage(intent string, msg interface{}) error {
	return c.send(intent, constant(msg), nil)
}

func constant(msg interface{}) func() (interface{}, error) {
	return func() (interface{}, error) { return msg, nil }
}

// send builds and writes one outbound message, then applies the optimistic
// local change. build and after run under the state lock. Nothing is queued
// when the stream is not open.
func (c *Controller) send(intent string, build func() (interface{}, error), after func()) error {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	stream := c.stream
	if c.closed || stream == nil || !stream.Open() {
		c.mu.Unlock()
		c.logger.Debug().Str("intent", intent).Msg("ignoring intent, stream not open")
		c.metrics.RecordIntent(intent, false)
		return ErrIntentIgnored
	}

	msg, err := build()
	if err != nil {
		c.mu.Unlock()
		c.metrics.RecordIntent(intent, false)
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.mu.Unlock()
		c.metrics.RecordIntent(intent, false)
		return fmt.Errorf("failed to marshal %s message: %w", intent, err)
	}
	if err := stream.Send(data); err != nil {
		c.mu.Unlock()
		c.logger.Warn().Err(err).Str("intent", intent).Msg("failed to send intent")
		c.metrics.RecordIntent(intent, false)
		return fmt.Errorf("%w: %w", ErrIntentIgnored, err)
	}

	if after != nil {
		after()
	}
	view := c.viewLocked()
	c.mu.Unlock()

	c.metrics.RecordIntent(intent, true)
	if after != nil && c.onChange != nil {
		c.onChange(view)
	}
	return nil
}
