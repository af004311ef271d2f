package roomevents

import "context"

const (
	TypeRoomCreated = "room-created"
	TypeGuestJoined = "guest-joined"
	TypeRoomClosed  = "room-closed"
)

// Event is a room lifecycle notice for consumers outside this process. It
// never carries playback state.
type Event struct {
	Type       string `json:"type"`
	RoomCode   string `json:"room_code"`
	Reason     string `json:"reason,omitempty"`
	GuestCount int    `json:"guest_count"`
	At         int64  `json:"at"`
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
