package wsclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

var (
	// ErrNotOpen is returned by Send once the connection has been closed
	ErrNotOpen = errors.New("connection is not open")
	// ErrSendBufferFull is returned when the write pump cannot keep up
	ErrSendBufferFull = errors.New("send buffer full")
)

// Config holds configuration for room stream connections
type Config struct {
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBufferSize int
}

// DefaultConfig returns default stream configuration
func DefaultConfig() Config {
	return Config{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 1 << 20, // room snapshots grow with the story list
		SendBufferSize: 64,
	}
}

// Dialer opens room streams against one backend
type Dialer struct {
	baseURL string
	config  Config
	clock   clockwork.Clock
	logger  zerolog.Logger
	ws      *websocket.Dialer
}

// NewDialer creates a dialer for baseURL, e.g. ws://localhost:8000
func NewDialer(baseURL string, config Config, clock clockwork.Clock, logger zerolog.Logger) *Dialer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Dialer{
		baseURL: strings.TrimRight(baseURL, "/"),
		config:  config,
		clock:   clock,
		logger:  logger,
		ws: &websocket.Dialer{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// RoomURL returns the stream address for a room code
func (d *Dialer) RoomURL(roomCode string) string {
	return fmt.Sprintf("%s/ws/room/%s/", d.baseURL, url.PathEscape(roomCode))
}

// Dial opens the stream for a room. The handshake is bounded only by ctx.
func (d *Dialer) Dial(ctx context.Context, roomCode string) (*Conn, error) {
	target := d.RoomURL(roomCode)
	ws, _, err := d.ws.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}

	c := &Conn{
		ID:          uuid.New().String(),
		RoomCode:    roomCode,
		ConnectedAt: d.clock.Now(),
		conn:        ws,
		config:      d.config,
		clock:       d.clock,
		send:        make(chan []byte, d.config.SendBufferSize),
		messages:    make(chan []byte, d.config.SendBufferSize),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		open:        true,
	}
	c.logger = d.logger.With().
		Str("connection_id", c.ID).
		Str("room_code", roomCode).
		Logger()

	c.pumps.Add(2)
	go c.writePump()
	go c.readPump()
	go func() {
		c.pumps.Wait()
		close(c.done)
	}()

	c.logger.Info().Str("url", target).Msg("room stream connected")
	return c, nil
}

// Conn is one client-side WebSocket connection to a room
type Conn struct {
	ID          string
	RoomCode    string
	ConnectedAt time.Time

	conn   *websocket.Conn
	config Config
	clock  clockwork.Clock
	logger zerolog.Logger

	send     chan []byte
	messages chan []byte
	stop     chan struct{}
	done     chan struct{}

	mu       sync.RWMutex
	open     bool
	err      error
	stopOnce sync.Once
	pumps    sync.WaitGroup
}

// Messages delivers inbound text frames in arrival order. It is closed when
// the connection ends for any reason.
func (c *Conn) Messages() <-chan []byte {
	return c.messages
}

// Done is closed once both pumps have exited
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Open reports whether outbound messages are still accepted
func (c *Conn) Open() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

// Err returns the error that ended the connection, if any
func (c *Conn) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Send queues a text frame. It never blocks.
func (c *Conn) Send(msg []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.open {
		return ErrNotOpen
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close flushes queued frames, sends a close frame and waits for the pumps.
func (c *Conn) Close() error {
	c.shutdown(nil)
	<-c.done
	return nil
}

func (c *Conn) shutdown(err error) {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.open = false
		if c.err == nil {
			c.err = err
		}
		c.mu.Unlock()
		close(c.stop)
	})
}

// writePump handles sending messages to the WebSocket connection
func (c *Conn) writePump() {
	ticker := c.clock.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.pumps.Done()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.logger.Error().Err(err).Msg("failed to write message to WebSocket")
				c.shutdown(err)
				return
			}

		case <-ticker.Chan():
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("failed to send ping")
				c.shutdown(err)
				return
			}

		case <-c.stop:
			c.flush()
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever is still queued, e.g. a final announcement
func (c *Conn) flush() {
	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteMessage(messageType, data)
}

// readPump handles reading messages from the WebSocket connection
func (c *Conn) readPump() {
	defer func() {
		close(c.messages)
		c.pumps.Done()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error().Err(err).Msg("unexpected WebSocket close error")
			} else {
				c.logger.Debug().Err(err).Msg("room stream read loop ended")
			}
			c.shutdown(err)
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		select {
		case c.messages <- message:
		case <-c.stop:
			// the write pump closes the socket after flushing
			return
		}
	}
}
