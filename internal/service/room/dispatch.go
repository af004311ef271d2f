package room

import (
	"context"
	"fmt"

	"github.com/sharetube/disco/internal/domain"
)

// Command is one decoded inbound operation.
type Command interface {
	Name() string
}

type CreateRoomCommand struct {
	AdminID      string
	Playlist     []domain.Track
	InitialTrack *domain.Track
}

type UpdateTrackCommand struct {
	Track *domain.Track
}

type PlayPauseCommand struct {
	IsPlaying     bool
	CurrentTimeMs int64
}

type SyncTimeCommand struct {
	CurrentTimeMs int64
}

type JoinRoomCommand struct {
	RoomCode  string
	GuestName string
	Emoji     string
}

type RequestSyncCommand struct{}

type PingCommand struct {
	ClientTimestamp *int64
}

type DisconnectCommand struct{}

func (CreateRoomCommand) Name() string  { return OpCreateRoom }
func (UpdateTrackCommand) Name() string { return OpUpdateTrack }
func (PlayPauseCommand) Name() string   { return OpPlayPause }
func (SyncTimeCommand) Name() string    { return OpSyncTime }
func (JoinRoomCommand) Name() string    { return OpJoinRoom }
func (RequestSyncCommand) Name() string { return OpRequestSync }
func (PingCommand) Name() string        { return OpPing }
func (DisconnectCommand) Name() string  { return OpDisconnect }

// Dispatch applies cmd on behalf of connID. Acknowledged operations answer
// through ackFn, failures included.
func (s *service) Dispatch(ctx context.Context, connID string, cmd Command, ackFn AckFunc) error {
	var err error
	switch c := cmd.(type) {
	case CreateRoomCommand:
		_, err = s.CreateRoom(ctx, &CreateRoomParams{
			ConnID:       connID,
			AdminID:      c.AdminID,
			Playlist:     c.Playlist,
			InitialTrack: c.InitialTrack,
		}, ackFn)
	case UpdateTrackCommand:
		return s.UpdateTrack(ctx, &UpdateTrackParams{ConnID: connID, Track: c.Track})
	case PlayPauseCommand:
		return s.PlayPause(ctx, &PlayPauseParams{ConnID: connID, IsPlaying: c.IsPlaying, CurrentTimeMs: c.CurrentTimeMs})
	case SyncTimeCommand:
		return s.SyncTime(ctx, &SyncTimeParams{ConnID: connID, CurrentTimeMs: c.CurrentTimeMs})
	case JoinRoomCommand:
		_, err = s.JoinRoom(ctx, &JoinRoomParams{
			ConnID:   connID,
			RoomCode: c.RoomCode,
			Name:     c.GuestName,
			Emoji:    c.Emoji,
		}, ackFn)
	case RequestSyncCommand:
		_, err = s.RequestSync(ctx, connID, ackFn)
	case PingCommand:
		s.Ping(ctx, &PingParams{ClientTimestamp: c.ClientTimestamp}, ackFn)
		return nil
	case DisconnectCommand:
		return s.Disconnect(ctx, connID)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}

	if err != nil {
		ack(ackFn, FailureFromError(err))
	}

	return err
}
