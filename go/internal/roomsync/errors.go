package roomsync

import (
	"errors"
	"fmt"

	"github.com/mcdev12/planningpoker/go/clients/roomapi"
)

var (
	// ErrRoomNotFound is the room API's not-found condition
	ErrRoomNotFound = roomapi.ErrRoomNotFound

	ErrNotJoined        = errors.New("room not joined")
	ErrAlreadyConnected = errors.New("room stream already connected")
	ErrClosed           = errors.New("controller closed")

	// ErrIntentIgnored is returned when an intent is issued while the stream
	// is not open. Nothing is queued.
	ErrIntentIgnored = errors.New("intent ignored: stream not open")

	ErrNoCurrentStory = errors.New("no current story")
	ErrInvalidVote    = errors.New("invalid vote value")
	ErrInvalidPoints  = errors.New("invalid points")
	ErrMalformedEvent = errors.New("malformed event")
)

// JoinError reports a failed join or fetch. Callers are expected to return the
// user to an entry point; the controller never retries.
type JoinError struct {
	Op       string
	RoomCode string
	Err      error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("failed to %s room %s: %v", e.Op, e.RoomCode, e.Err)
}

func (e *JoinError) Unwrap() error {
	return e.Err
}
