package domain

import (
	"sync"
	"time"
)

type NewRoomParams struct {
	Code         string
	AdminID      string
	AdminConnID  string
	InitialTrack *Track
	Playlist     []Track
	CreatedAt    time.Time
}

// Room is one broadcast domain. Callers hold the room lock while reading or
// mutating anything but Code and AdminConnID, which never change.
type Room struct {
	mu sync.Mutex

	Code           string
	AdminID        string
	AdminConnID    string
	Guests         Guests
	Player         Player
	Playlist       Playlist
	CreatedAt      time.Time
	LastActivityAt time.Time

	closed bool
}

func NewRoom(params *NewRoomParams) *Room {
	return &Room{
		Code:           params.Code,
		AdminID:        params.AdminID,
		AdminConnID:    params.AdminConnID,
		Guests:         NewGuests(),
		Player:         NewPlayer(params.InitialTrack),
		Playlist:       NewPlaylist(params.Playlist),
		CreatedAt:      params.CreatedAt,
		LastActivityAt: params.CreatedAt,
	}
}

func (r *Room) Lock() {
	r.mu.Lock()
}

func (r *Room) Unlock() {
	r.mu.Unlock()
}

func (r *Room) IsClosed() bool {
	return r.closed
}

// Close marks the room as torn down. Closing is one-way.
func (r *Room) Close() {
	r.closed = true
}

func (r *Room) IsAdmin(connID string) bool {
	return connID != "" && r.AdminConnID == connID
}

func (r *Room) Touch(now time.Time) {
	r.LastActivityAt = now
}

func (r *Room) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.LastActivityAt) > ttl
}

func (r *Room) Snapshot(now time.Time) SyncSnapshot {
	return SyncSnapshot{
		Track:           r.Player.CurrentTrack.Clone(),
		IsPlaying:       r.Player.IsPlaying,
		CurrentTimeMs:   r.Player.CurrentTimeMs,
		Playlist:        r.Playlist.AsList(),
		ServerTimestamp: now.UnixMilli(),
	}
}

// Recipients are the admin and every active guest.
func (r *Room) Recipients() []string {
	return append([]string{r.AdminConnID}, r.Guests.ActiveConnIDs()...)
}

// ConnIDs lists every connection that was ever bound to the room.
func (r *Room) ConnIDs() []string {
	return append([]string{r.AdminConnID}, r.Guests.ConnIDs()...)
}
