package mirror

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/roomsync"
)

type recordingPublisher struct {
	msgs []*nats.Msg
	err  error
}

func (p *recordingPublisher) PublishMsg(msg *nats.Msg) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestObservePublishesNewSnapshots(t *testing.T) {
	pub := &recordingPublisher{}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	m := New(pub, "poker.rooms", clock, zerolog.Nop())

	first := &models.Room{Code: "ABC123", SessionName: "Sprint 12"}
	second := &models.Room{Code: "ABC123", SessionName: "Sprint 12", ParticipantsCount: 2}

	m.Observe(roomsync.View{RoomCode: "ABC123", ParticipantID: "p-1", Room: first})
	// same snapshot, only local state changed
	m.Observe(roomsync.View{RoomCode: "ABC123", Room: first, ResetConfirm: true})
	m.Observe(roomsync.View{RoomCode: "ABC123", Room: second, LastEvent: roomsync.EventTypeUserJoined})
	m.Observe(roomsync.View{RoomCode: "ABC123"})

	if len(pub.msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.msgs))
	}

	msg := pub.msgs[0]
	if msg.Subject != "poker.rooms.ABC123.snapshot" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if got := msg.Header.Get("Event-Type"); got != SourceFetch {
		t.Errorf("Event-Type = %q, want %q", got, SourceFetch)
	}
	if got := msg.Header.Get("Room-Code"); got != "ABC123" {
		t.Errorf("Room-Code = %q", got)
	}

	var env Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.ParticipantID != "p-1" || env.Room.SessionName != "Sprint 12" || !env.Timestamp.Equal(clock.Now()) {
		t.Errorf("envelope = %+v", env)
	}

	if got := pub.msgs[1].Header.Get("Event-Type"); got != "user_joined" {
		t.Errorf("second Event-Type = %q, want user_joined", got)
	}
}

func TestObserveSurvivesPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats: connection closed")}
	m := New(pub, "poker.rooms", nil, zerolog.Nop())

	m.Observe(roomsync.View{RoomCode: "ABC123", Room: &models.Room{Code: "ABC123"}})
	if len(pub.msgs) != 0 {
		t.Errorf("published %d messages", len(pub.msgs))
	}
}
