package domain

// Player is the authoritative transport state of a room.
type Player struct {
	CurrentTrack  *Track `json:"current_track"`
	IsPlaying     bool   `json:"is_playing"`
	CurrentTimeMs int64  `json:"current_time_ms"`
}

func NewPlayer(initialTrack *Track) Player {
	return Player{
		CurrentTrack:  initialTrack.Clone(),
		IsPlaying:     false,
		CurrentTimeMs: 0,
	}
}

// SetTrack switches the track and rewinds to the start.
func (p *Player) SetTrack(track *Track) {
	p.CurrentTrack = track.Clone()
	p.CurrentTimeMs = 0
}

func (p *Player) SetState(isPlaying bool, currentTimeMs int64) {
	p.IsPlaying = isPlaying
	p.CurrentTimeMs = currentTimeMs
}

func (p *Player) SetTime(currentTimeMs int64) {
	p.CurrentTimeMs = currentTimeMs
}

type SyncSnapshot struct {
	Track           *Track  `json:"track"`
	IsPlaying       bool    `json:"is_playing"`
	CurrentTimeMs   int64   `json:"current_time_ms"`
	Playlist        []Track `json:"playlist"`
	ServerTimestamp int64   `json:"server_timestamp"`
}
