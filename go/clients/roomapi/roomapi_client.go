package roomapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mcdev12/planningpoker/go/clients"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

// ErrRoomNotFound is returned when the backend has no room for the code
var ErrRoomNotFound = errors.New("room not found")

// CreateRoomRequest optionally seeds the room with a first story
type CreateRoomRequest struct {
	StoryID string `json:"story_id,omitempty"`
	Title   string `json:"title,omitempty"`
}

// JoinRoomRequest identifies the joining participant
type JoinRoomRequest struct {
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
}

// JoinRoomResponse carries the participant record and the room snapshot
type JoinRoomResponse struct {
	Participant models.Participant `json:"participant"`
	Room        models.Room        `json:"room"`
}

// Client talks to the planning poker room REST API
type Client struct {
	*clients.BaseClient
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseClient: clients.NewBaseClient(baseURL),
	}
}

// CreateRoom creates a room and returns its initial snapshot
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	var room models.Room
	if err := c.DoJSON(ctx, http.MethodPost, RoomsEndpoint, req, &room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &room, nil
}

// GetRoom fetches the current snapshot of a room
func (c *Client) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := c.DoJSON(ctx, http.MethodGet, roomPath(RoomEndpoint, code), nil, &room); err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", code, mapNotFound(err))
	}
	return &room, nil
}

// JoinRoom obtains or creates membership for the username in the room
func (c *Client) JoinRoom(ctx context.Context, code string, req JoinRoomRequest) (*JoinRoomResponse, error) {
	var resp JoinRoomResponse
	if err := c.DoJSON(ctx, http.MethodPost, roomPath(JoinRoomEndpoint, code), req, &resp); err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", code, mapNotFound(err))
	}
	return &resp, nil
}

func roomPath(format, code string) string {
	return fmt.Sprintf(format, url.PathEscape(code))
}

// mapNotFound keeps the status error in the chain and adds ErrRoomNotFound for 404s
func mapNotFound(err error) error {
	var statusErr *clients.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrRoomNotFound, err)
	}
	return err
}
