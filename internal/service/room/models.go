package room

import "github.com/sharetube/disco/internal/domain"

// inbound operations
const (
	OpCreateRoom  = "create-room"
	OpUpdateTrack = "update-track"
	OpPlayPause   = "play-pause"
	OpSyncTime    = "sync-time"
	OpJoinRoom    = "join-room"
	OpRequestSync = "request-sync"
	OpPing        = "ping"
	OpDisconnect  = "disconnect"
)

// outbound events
const (
	EventTrackUpdate    = "track-update"
	EventPlaybackUpdate = "playback-update"
	EventTimeSync       = "time-sync"
	EventGuestJoined    = "guest-joined"
	EventGuestLeft      = "guest-left"
	EventGuestsUpdate   = "guests-update"
	EventRoomClosed     = "room-closed"
)

const (
	ReasonAdminDisconnected = "admin-disconnected"
	ReasonExpired           = "expired"
)

const (
	defaultGuestEmoji = "🎵"
)

type TrackUpdatePayload struct {
	Track           *domain.Track `json:"track"`
	CurrentTimeMs   int64         `json:"current_time_ms"`
	ServerTimestamp int64         `json:"server_timestamp"`
}

type PlaybackUpdatePayload struct {
	IsPlaying       bool          `json:"is_playing"`
	CurrentTimeMs   int64         `json:"current_time_ms"`
	Track           *domain.Track `json:"track"`
	ServerTimestamp int64         `json:"server_timestamp"`
}

type TimeSyncPayload struct {
	CurrentTimeMs   int64 `json:"current_time_ms"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

type GuestJoinedPayload struct {
	Guest       domain.Guest `json:"guest"`
	TotalGuests int          `json:"total_guests"`
}

type GuestLeftPayload struct {
	GuestID          string `json:"guest_id"`
	ActiveGuestCount int    `json:"active_guest_count"`
}

type GuestsUpdatePayload struct {
	GuestList []domain.Guest `json:"guest_list"`
}

type RoomClosedPayload struct {
	Reason string `json:"reason"`
}

type CreateRoomResponse struct {
	Success  bool   `json:"success"`
	RoomCode string `json:"room_code"`
}

type JoinRoomResponse struct {
	Success      bool                `json:"success"`
	GuestID      string              `json:"guest_id"`
	SyncSnapshot domain.SyncSnapshot `json:"sync_snapshot"`
}

type RequestSyncResponse struct {
	Success      bool                `json:"success"`
	SyncSnapshot domain.SyncSnapshot `json:"sync_snapshot"`
}

type PingResponse struct {
	ServerTimestamp int64  `json:"server_timestamp"`
	ClientTimestamp *int64 `json:"client_timestamp,omitempty"`
}

type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
