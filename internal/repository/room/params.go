package room

import (
	"time"

	"github.com/sharetube/disco/internal/domain"
)

type CreateRoomParams struct {
	AdminID      string
	AdminConnID  string
	InitialTrack *domain.Track
	Playlist     []domain.Track
	CreatedAt    time.Time
}
