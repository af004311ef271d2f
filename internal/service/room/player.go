package room

import (
	"context"

	"github.com/sharetube/disco/internal/domain"
)

type UpdateTrackParams struct {
	ConnID string
	Track  *domain.Track
}

// UpdateTrack switches the room to a new track and rewinds it. Calls from
// anyone but the admin of record are ignored.
func (s *service) UpdateTrack(ctx context.Context, params *UpdateTrackParams) error {
	rm, ok := s.lockAdminRoom(ctx, params.ConnID)
	if !ok {
		return nil
	}
	defer rm.Unlock()

	now := s.clock()
	rm.Player.SetTrack(params.Track)
	rm.Touch(now)

	s.broadcast(ctx, rm.Guests.ActiveConnIDs(), &domain.Message{
		Type: EventTrackUpdate,
		Payload: TrackUpdatePayload{
			Track:           rm.Player.CurrentTrack.Clone(),
			CurrentTimeMs:   rm.Player.CurrentTimeMs,
			ServerTimestamp: now.UnixMilli(),
		},
	})

	s.logger.DebugContext(ctx, "track updated", "room_code", rm.Code)
	return nil
}

type PlayPauseParams struct {
	ConnID        string
	IsPlaying     bool
	CurrentTimeMs int64
}

func (s *service) PlayPause(ctx context.Context, params *PlayPauseParams) error {
	rm, ok := s.lockAdminRoom(ctx, params.ConnID)
	if !ok {
		return nil
	}
	defer rm.Unlock()

	now := s.clock()
	rm.Player.SetState(params.IsPlaying, params.CurrentTimeMs)
	rm.Touch(now)

	// the track rides along so guests that missed a track-update catch up
	s.broadcast(ctx, rm.Guests.ActiveConnIDs(), &domain.Message{
		Type: EventPlaybackUpdate,
		Payload: PlaybackUpdatePayload{
			IsPlaying:       rm.Player.IsPlaying,
			CurrentTimeMs:   rm.Player.CurrentTimeMs,
			Track:           rm.Player.CurrentTrack.Clone(),
			ServerTimestamp: now.UnixMilli(),
		},
	})

	s.logger.DebugContext(ctx, "playback updated", "room_code", rm.Code, "is_playing", params.IsPlaying, "current_time_ms", params.CurrentTimeMs)
	return nil
}

type SyncTimeParams struct {
	ConnID        string
	CurrentTimeMs int64
}

func (s *service) SyncTime(ctx context.Context, params *SyncTimeParams) error {
	rm, ok := s.lockAdminRoom(ctx, params.ConnID)
	if !ok {
		return nil
	}
	defer rm.Unlock()

	now := s.clock()
	rm.Player.SetTime(params.CurrentTimeMs)
	rm.Touch(now)

	s.broadcast(ctx, rm.Guests.ActiveConnIDs(), &domain.Message{
		Type: EventTimeSync,
		Payload: TimeSyncPayload{
			CurrentTimeMs:   rm.Player.CurrentTimeMs,
			ServerTimestamp: now.UnixMilli(),
		},
		Lossy: true,
	})

	return nil
}
