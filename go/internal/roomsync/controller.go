// Package roomsync keeps one client session in sync with a planning poker room.
//
// A Controller joins the room over the request/response API, opens the room
// stream, applies inbound events to its cached snapshot and turns user intents
// into outbound messages. The snapshot is replaced wholesale on every update.
package roomsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mcdev12/planningpoker/go/clients/roomapi"
	"github.com/mcdev12/planningpoker/go/internal/identity"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

// RoomAPI is the request/response side of the backend
type RoomAPI interface {
	GetRoom(ctx context.Context, code string) (*models.Room, error)
	JoinRoom(ctx context.Context, code string, req roomapi.JoinRoomRequest) (*roomapi.JoinRoomResponse, error)
}

// Stream is one open event-stream connection scoped to a room
type Stream interface {
	Send(msg []byte) error
	// Messages is closed when the connection ends
	Messages() <-chan []byte
	Open() bool
	Close() error
}

// Dialer opens a stream for a room code
type Dialer interface {
	Dial(ctx context.Context, roomCode string) (Stream, error)
}

// DialerFunc adapts a function to Dialer
type DialerFunc func(ctx context.Context, roomCode string) (Stream, error)

func (f DialerFunc) Dial(ctx context.Context, roomCode string) (Stream, error) {
	return f(ctx, roomCode)
}

// Options configures a Controller
type Options struct {
	API      RoomAPI
	Dialer   Dialer
	Identity identity.Store
	Logger   zerolog.Logger
	Clock    clockwork.Clock
	Metrics  Metrics
	// OnChange receives a View after every state change, in order. It runs
	// while change notifications are serialized and must not call back into
	// the controller except for View.
	OnChange func(View)
}

// Controller mediates between one session and one room
type Controller struct {
	api      RoomAPI
	dialer   Dialer
	identity identity.Store
	logger   zerolog.Logger
	clock    clockwork.Clock
	metrics  Metrics
	onChange func(View)

	// notifyMu orders state changes with their notifications
	notifyMu sync.Mutex
	mu       sync.Mutex

	roomCode      string
	participantID string
	username      string
	sessionID     string

	room          *models.Room
	vote          SelectedVote
	confirm       *ConfirmPointsPrompt
	existing      *ExistingStoryPrompt
	resetConfirm  bool
	lastEvent     EventType
	lastEventAt   time.Time
	status        StreamStatus
	stream        Stream
	closed        bool
	done          chan struct{}
	doneCloseOnce sync.Once
}

// New creates a controller. API, Dialer and Identity are required.
func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Metrics == nil {
		opts.Metrics = NoOpMetrics{}
	}
	return &Controller{
		api:      opts.API,
		dialer:   opts.Dialer,
		identity: opts.Identity,
		logger:   opts.Logger.With().Str("component", "roomsync").Logger(),
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		onChange: opts.OnChange,
		vote:     unsetVote(),
		status:   StreamIdle,
		done:     make(chan struct{}),
	}
}

// Join obtains membership of a room. A stored identity with the same username
// is reused so a restart rejoins as the same participant. On success the
// identity is overwritten with the server's participant id.
func (c *Controller) Join(ctx context.Context, roomCode, username string) (*models.Room, error) {
	roomCode = strings.TrimSpace(roomCode)
	username = strings.TrimSpace(username)
	if roomCode == "" || username == "" {
		return nil, &JoinError{Op: "join", RoomCode: roomCode, Err: errors.New("room code and username are required")}
	}

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return nil, &JoinError{Op: "join", RoomCode: roomCode, Err: ErrClosed}
	case c.stream != nil:
		c.mu.Unlock()
		return nil, &JoinError{Op: "join", RoomCode: roomCode, Err: ErrAlreadyConnected}
	}
	c.mu.Unlock()

	sessionID := ""
	stored, err := c.identity.Load()
	switch {
	case err == nil && stored.Username == username && stored.SessionID != "":
		sessionID = stored.SessionID
	case err != nil && !errors.Is(err, identity.ErrNoIdentity):
		c.logger.Warn().Err(err).Msg("failed to load stored identity, starting a new session")
	}
	if sessionID == "" {
		sessionID = identity.NewSessionID(username)
	}

	logger := c.logger.With().Str("room_code", roomCode).Str("username", username).Logger()
	logger.Info().Msg("joining room")

	resp, err := c.api.JoinRoom(ctx, roomCode, roomapi.JoinRoomRequest{
		Username:  username,
		SessionID: sessionID,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to join room")
		return nil, &JoinError{Op: "join", RoomCode: roomCode, Err: err}
	}

	room := resp.Room
	c.update(func() bool {
		c.roomCode = roomCode
		c.participantID = resp.Participant.ID
		c.username = username
		c.sessionID = sessionID
		c.lastEvent = ""
		c.applyRoomLocked(&room)
		return true
	})

	if err := c.identity.Save(identity.Identity{
		ParticipantID: resp.Participant.ID,
		Username:      username,
		SessionID:     sessionID,
	}); err != nil {
		logger.Error().Err(err).Msg("failed to persist identity")
	}

	logger.Info().Str("participant_id", resp.Participant.ID).Msg("joined room")
	return &room, nil
}

// Refresh refetches the room and applies it like any room-bearing event
func (c *Controller) Refresh(ctx context.Context) (*models.Room, error) {
	c.mu.Lock()
	code := c.roomCode
	c.mu.Unlock()
	if code == "" {
		return nil, ErrNotJoined
	}

	room, err := c.api.GetRoom(ctx, code)
	if err != nil {
		c.logger.Error().Err(err).Str("room_code", code).Msg("failed to fetch room")
		return nil, &JoinError{Op: "fetch", RoomCode: code, Err: err}
	}

	applied := c.update(func() bool {
		if c.closed {
			return false
		}
		c.lastEvent = ""
		c.applyRoomLocked(room)
		return true
	})
	if !applied {
		return nil, ErrClosed
	}
	return room, nil
}

// Connect opens the room stream and announces this participant. Inbound
// events are applied on a dedicated goroutine until the stream ends. There is
// no reconnect: once the stream is gone a new Controller is needed.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.participantID == "":
		c.mu.Unlock()
		return ErrNotJoined
	case c.status != StreamIdle:
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.status = StreamConnecting
	code, pid, username := c.roomCode, c.participantID, c.username
	c.mu.Unlock()

	logger := c.logger.With().Str("room_code", code).Logger()

	stream, err := c.dialer.Dial(ctx, code)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open room stream")
		c.update(func() bool {
			if c.closed {
				return false
			}
			c.status = StreamIdle
			return true
		})
		return fmt.Errorf("failed to connect to room %s: %w", code, err)
	}

	attached := c.update(func() bool {
		if c.closed {
			return false
		}
		c.stream = stream
		c.status = StreamOpen
		return true
	})
	if !attached {
		stream.Close()
		return ErrClosed
	}

	go c.consume(stream, logger)

	if err := c.sendMessage(IntentUserJoined, userJoinedMessage{
		Type:          IntentUserJoined,
		Username:      username,
		ParticipantID: pid,
	}); err != nil {
		logger.Warn().Err(err).Msg("failed to announce participant")
	}

	logger.Info().Msg("room stream open")
	return nil
}

// Done is closed once the stream has ended, or when the controller is closed
// without ever connecting.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Close announces departure if the stream is still open and closes it. No
// inbound event is applied afterwards.
func (c *Controller) Close() error {
	var stream Stream
	var pid string
	closing := c.update(func() bool {
		if c.closed {
			return false
		}
		c.closed = true
		stream = c.stream
		pid = c.participantID
		if stream != nil {
			c.status = StreamClosed
		}
		return true
	})
	if !closing {
		return nil
	}

	if stream == nil {
		c.closeDone()
		return nil
	}

	if stream.Open() {
		data, err := json.Marshal(userLeftMessage{Type: IntentUserLeft, ParticipantID: pid})
		if err == nil {
			err = stream.Send(data)
		}
		c.metrics.RecordIntent(IntentUserLeft, err == nil)
		if err != nil {
			c.logger.Warn().Err(err).Msg("failed to announce departure")
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close room stream: %w", err)
	}
	return nil
}

// Leave closes the controller and forgets the stored identity
func (c *Controller) Leave() error {
	closeErr := c.Close()
	if err := c.identity.Clear(); err != nil {
		return fmt.Errorf("failed to clear identity: %w", err)
	}
	return closeErr
}

// View returns a copy of the current state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Room returns the cached snapshot, nil before the first join or fetch
func (c *Controller) Room() *models.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Controller) consume(stream Stream, logger zerolog.Logger) {
	defer func() {
		c.update(func() bool {
			if c.stream != stream || c.status == StreamClosed {
				return false
			}
			c.status = StreamClosed
			return true
		})
		c.closeDone()
		logger.Info().Msg("room stream ended")
	}()

	for msg := range stream.Messages() {
		c.handleMessage(stream, msg, logger)
	}
}

func (c *Controller) handleMessage(stream Stream, msg []byte, logger zerolog.Logger) {
	ev, err := ParseEvent(msg)
	if err != nil {
		logger.Warn().Err(err).Str("payload", truncate(msg, 256)).Msg("dropping malformed event")
		c.metrics.RecordEventDropped(DropReasonMalformed)
		return
	}

	applied := c.update(func() bool {
		if c.closed || c.stream != stream {
			return false
		}
		c.applyEventLocked(ev)
		return true
	})

	if !applied {
		logger.Debug().Str("event_type", string(ev.Type())).Msg("dropping event after teardown")
		c.metrics.RecordEventDropped(DropReasonStale)
		return
	}
	logger.Debug().Str("event_type", string(ev.Type())).Msg("applied event")
	c.metrics.RecordEventApplied(ev.Type())
}

func (c *Controller) applyEventLocked(ev Event) {
	c.lastEvent = ev.Type()
	c.lastEventAt = c.clock.Now()

	switch e := ev.(type) {
	case *RoomEvent:
		c.applyRoomLocked(e.Room)
		switch e.EventType {
		case EventTypeRoomReset:
			c.vote = unsetVote()
			c.confirm = nil
			c.resetConfirm = false
		case EventTypePointsConfirmed:
			c.confirm = nil
		}

	case *VotesRevealedEvent:
		c.applyRoomLocked(e.Room)
		if e.Average != nil && e.Rounded != nil {
			c.confirm = &ConfirmPointsPrompt{
				Average:    *e.Average,
				Rounded:    *e.Rounded,
				Discussion: e.Discussion,
			}
		}

	case *StoryExistsEvent:
		c.existing = newExistingStoryPrompt(e.Story)

	default:
		c.logger.Warn().Str("event_type", string(ev.Type())).Msg("unhandled event variant")
	}
}

func (c *Controller) applyRoomLocked(room *models.Room) {
	c.room = room
	c.vote = c.vote.reconcile(room, c.participantID)
}

func (c *Controller) viewLocked() View {
	return View{
		RoomCode:      c.roomCode,
		ParticipantID: c.participantID,
		Username:      c.username,
		Room:          c.room,
		Vote:          c.vote,
		ConfirmPoints: c.confirm,
		ExistingStory: c.existing,
		ResetConfirm:  c.resetConfirm,
		Stream:        c.status,
		LastEvent:     c.lastEvent,
		LastEventAt:   c.lastEventAt,
	}
}

// update runs mutate under the state lock and, when it reports a change,
// notifies the observer with the resulting view.
func (c *Controller) update(mutate func() bool) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	changed := mutate()
	view := c.viewLocked()
	c.mu.Unlock()

	if changed && c.onChange != nil {
		c.onChange(view)
	}
	return changed
}

func (c *Controller) closeDone() {
	c.doneCloseOnce.Do(func() { close(c.done) })
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
