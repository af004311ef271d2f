package controller

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/sharetube/disco/internal/domain"
	"github.com/sharetube/disco/internal/service/room"
	"github.com/sharetube/disco/pkg/validator"
	"github.com/sharetube/disco/pkg/wsrouter"
)

var errInvalidPayload = errors.New("invalid payload")

type CreateRoomInput struct {
	AdminID      string         `json:"admin_id" validate:"required,max=64"`
	Playlist     []domain.Track `json:"playlist" validate:"max=500,dive"`
	InitialTrack *domain.Track  `json:"initial_track"`
}

func (c controller) handleCreateRoom(ctx context.Context, payload json.RawMessage, ack wsrouter.AckFunc) error {
	var input CreateRoomInput
	if err := c.decode(payload, &input); err != nil {
		ack(room.FailureResponse{Success: false, Error: err.Error()})
		return err
	}

	return c.dispatch(ctx, room.CreateRoomCommand{
		AdminID:      input.AdminID,
		Playlist:     input.Playlist,
		InitialTrack: input.InitialTrack,
	}, ack)
}

type UpdateTrackInput struct {
	Track *domain.Track `json:"track"`
}

func (c controller) handleUpdateTrack(ctx context.Context, payload json.RawMessage, _ wsrouter.AckFunc) error {
	var input UpdateTrackInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	return c.dispatch(ctx, room.UpdateTrackCommand{Track: input.Track}, nil)
}

type PlayPauseInput struct {
	IsPlaying     bool  `json:"is_playing"`
	CurrentTimeMs int64 `json:"current_time_ms" validate:"gte=0"`
}

func (c controller) handlePlayPause(ctx context.Context, payload json.RawMessage, _ wsrouter.AckFunc) error {
	var input PlayPauseInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	return c.dispatch(ctx, room.PlayPauseCommand{
		IsPlaying:     input.IsPlaying,
		CurrentTimeMs: input.CurrentTimeMs,
	}, nil)
}

type SyncTimeInput struct {
	CurrentTimeMs int64 `json:"current_time_ms" validate:"gte=0"`
}

func (c controller) handleSyncTime(ctx context.Context, payload json.RawMessage, _ wsrouter.AckFunc) error {
	var input SyncTimeInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	return c.dispatch(ctx, room.SyncTimeCommand{CurrentTimeMs: input.CurrentTimeMs}, nil)
}

type JoinRoomInput struct {
	RoomCode string `json:"room_code" validate:"required,roomcode"`
	Name     string `json:"name" validate:"max=32"`
	Emoji    string `json:"emoji" validate:"max=16"`
}

func (c controller) handleJoinRoom(ctx context.Context, payload json.RawMessage, ack wsrouter.AckFunc) error {
	var input JoinRoomInput
	if err := json.Unmarshal(orEmpty(payload), &input); err != nil {
		ack(room.FailureResponse{Success: false, Error: errInvalidPayload.Error()})
		return errInvalidPayload
	}

	input.RoomCode = c.normalizeRoomCode(input.RoomCode)
	input.Name = strings.TrimSpace(input.Name)
	if errs, ok := c.validate.Validate(input); !ok {
		failure := room.FailureResponse{Success: false, Error: errs[0].Message}
		// a malformed code can never name a live room
		if slices.ContainsFunc(errs, func(e validator.ValidationError) bool { return e.Field == "room_code" }) {
			failure = room.FailureFromError(room.ErrRoomNotFound)
		}
		ack(failure)
		return validator.Err(errs)
	}

	return c.dispatch(ctx, room.JoinRoomCommand{
		RoomCode:  input.RoomCode,
		GuestName: input.Name,
		Emoji:     input.Emoji,
	}, ack)
}

func (c controller) handleRequestSync(ctx context.Context, _ json.RawMessage, ack wsrouter.AckFunc) error {
	return c.dispatch(ctx, room.RequestSyncCommand{}, ack)
}

type PingInput struct {
	ClientTimestamp *int64 `json:"client_timestamp"`
}

func (c controller) handlePing(ctx context.Context, payload json.RawMessage, ack wsrouter.AckFunc) error {
	var input PingInput
	// a ping with an unreadable payload is still answered
	_ = json.Unmarshal(orEmpty(payload), &input)

	return c.dispatch(ctx, room.PingCommand{ClientTimestamp: input.ClientTimestamp}, ack)
}

// dispatch hands cmd to the room service. Service failures of acknowledged
// operations are already answered through ack, so they are only logged.
func (c controller) dispatch(ctx context.Context, cmd room.Command, ack wsrouter.AckFunc) error {
	var ackFn room.AckFunc
	if ack != nil {
		ackFn = room.AckFunc(ack)
	}

	if err := c.roomService.Dispatch(ctx, c.getConnIDFromCtx(ctx), cmd, ackFn); err != nil {
		c.logger.InfoContext(ctx, "command failed", "command", cmd.Name(), "error", err)
	}

	return nil
}
