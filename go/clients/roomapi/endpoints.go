package roomapi

const (
	// DefaultBaseURL matches the backend's development address
	DefaultBaseURL = "http://localhost:8000/api"

	// API Endpoints
	RoomsEndpoint    = "/rooms/"
	RoomEndpoint     = "/rooms/%s/"
	JoinRoomEndpoint = "/rooms/%s/join/"
)
