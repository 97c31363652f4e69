// Package mirror republishes every new room snapshot to NATS so other local
// tools can follow the room without their own WebSocket connection.
package mirror

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/roomsync"
)

// SourceFetch is the Event-Type header for snapshots from a join or refresh
const SourceFetch = "fetch"

type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "poker.rooms",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Publisher is the subset of *nats.Conn the mirror needs
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Connect opens the NATS connection used by the mirror
func Connect(cfg Config, logger zerolog.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("planningpoker-mirror"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Envelope is the published message body
type Envelope struct {
	RoomCode      string       `json:"roomCode"`
	EventType     string       `json:"eventType"`
	ParticipantID string       `json:"participantId,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
	Room          *models.Room `json:"room"`
}

// Mirror publishes snapshots as they change. Use Observe as the controller's
// change observer.
type Mirror struct {
	pub    Publisher
	prefix string
	clock  clockwork.Clock
	logger zerolog.Logger

	mu   sync.Mutex
	last *models.Room
}

func New(pub Publisher, subjectPrefix string, clock clockwork.Clock, logger zerolog.Logger) *Mirror {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Mirror{
		pub:    pub,
		prefix: subjectPrefix,
		clock:  clock,
		logger: logger,
	}
}

// Subject returns the subject snapshots of a room are published on
func (m *Mirror) Subject(roomCode string) string {
	return fmt.Sprintf("%s.%s.snapshot", m.prefix, roomCode)
}

// Observe publishes the view's snapshot if it differs from the last one
// published. Prompt or vote-only changes are skipped.
func (m *Mirror) Observe(view roomsync.View) {
	if view.Room == nil {
		return
	}

	m.mu.Lock()
	if m.last == view.Room {
		m.mu.Unlock()
		return
	}
	m.last = view.Room
	m.mu.Unlock()

	if err := m.publish(view); err != nil {
		m.logger.Error().Err(err).Str("room_code", view.RoomCode).Msg("failed to mirror snapshot")
	}
}

func (m *Mirror) publish(view roomsync.View) error {
	eventType := string(view.LastEvent)
	if eventType == "" {
		eventType = SourceFetch
	}
	code := view.RoomCode
	if code == "" {
		code = view.Room.Code
	}

	data, err := json.Marshal(Envelope{
		RoomCode:      code,
		EventType:     eventType,
		ParticipantID: view.ParticipantID,
		Timestamp:     m.clock.Now().UTC(),
		Room:          view.Room,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	subject := m.Subject(code)
	if err := m.pub.PublishMsg(&nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Room-Code":  []string{code},
			"Event-Type": []string{eventType},
		},
	}); err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}

	m.logger.Debug().
		Str("subject", subject).
		Str("event_type", eventType).
		Msg("mirrored snapshot")
	return nil
}
