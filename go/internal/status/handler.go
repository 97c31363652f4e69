package status

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/roomsync"
)

// ViewProvider exposes the controller's current view
type ViewProvider interface {
	View() roomsync.View
}

// RoomResponse is the /room payload: the view plus values derived from the
// snapshot.
type RoomResponse struct {
	roomsync.View
	CurrentStory     *models.Story `json:"current_story,omitempty"`
	VotesRevealed    bool          `json:"votes_revealed"`
	AllVoted         bool          `json:"all_voted"`
	TotalPoints      int           `json:"total_points"`
	EstimatedStories int           `json:"estimated_stories"`
}

// Handler serves the local status endpoints
type Handler struct {
	views    ViewProvider
	counters *Counters
	logger   zerolog.Logger
}

// NewHandler creates a status handler. counters may be nil.
func NewHandler(views ViewProvider, counters *Counters, logger zerolog.Logger) *Handler {
	return &Handler{
		views:    views,
		counters: counters,
		logger:   logger,
	}
}

// HandleHealth handles GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error().Err(err).Msg("failed to write health check response")
	}
}

// HandleRoom handles GET /room
func (h *Handler) HandleRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view := h.views.View()
	if view.Room == nil {
		http.Error(w, "Not joined to a room", http.StatusNotFound)
		return
	}

	resp := RoomResponse{
		View:             view,
		CurrentStory:     view.Room.CurrentStory(),
		VotesRevealed:    view.Room.VotesRevealed(),
		AllVoted:         view.Room.AllConnectedVoted(),
		TotalPoints:      view.Room.TotalPoints(),
		EstimatedStories: view.Room.EstimatedStories(),
	}
	h.writeJSON(w, resp)
}

// HandleStats handles GET /stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := Stats{}
	if h.counters != nil {
		stats = h.counters.Snapshot()
	}
	h.writeJSON(w, stats)
}

// RegisterRoutes registers the status routes on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/room", h.HandleRoom)
	mux.HandleFunc("/stats", h.HandleStats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode status response")
	}
}

// NewServer wraps the handler's routes with CORS so a browser dashboard can
// poll them.
func NewServer(addr string, h *Handler) *http.Server {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	return &http.Server{
		Addr:         addr,
		Handler:      c.Handler(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
