package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sharetube/disco/internal/domain"
	"github.com/sharetube/disco/internal/metrics"
	"github.com/sharetube/disco/internal/repository/connection"
	"github.com/sharetube/disco/internal/repository/room"
	"github.com/sharetube/disco/internal/repository/roomevents"
)

type CreateRoomParams struct {
	ConnID       string
	AdminID      string
	Playlist     []domain.Track
	InitialTrack *domain.Track
}

func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams, ackFn AckFunc) (CreateRoomResponse, error) {
	if s.isBound(ctx, params.ConnID) {
		return CreateRoomResponse{}, ErrAlreadyInRoom
	}

	rm, err := s.roomRepo.Create(ctx, &room.CreateRoomParams{
		AdminID:      params.AdminID,
		AdminConnID:  params.ConnID,
		InitialTrack: params.InitialTrack,
		Playlist:     params.Playlist,
		CreatedAt:    s.clock(),
	})
	if err != nil {
		if errors.Is(err, connection.ErrAlreadyExists) {
			return CreateRoomResponse{}, ErrAlreadyInRoom
		}

		s.logger.ErrorContext(ctx, "failed to create room", "error", err)
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	metrics.RoomsActive.Inc()
	s.events.Publish(ctx, roomevents.Event{
		Type:     roomevents.TypeRoomCreated,
		RoomCode: rm.Code,
		At:       s.now(),
	})

	s.logger.InfoContext(ctx, "room created", "room_code", rm.Code, "admin_id", params.AdminID, "playlist_length", len(params.Playlist))

	resp := CreateRoomResponse{
		Success:  true,
		RoomCode: rm.Code,
	}
	ack(ackFn, resp)

	return resp, nil
}

type JoinRoomParams struct {
	ConnID   string
	RoomCode string
	Name     string
	Emoji    string
}

func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams, ackFn AckFunc) (JoinRoomResponse, error) {
	if s.isBound(ctx, params.ConnID) {
		return JoinRoomResponse{}, ErrAlreadyInRoom
	}

	rm, err := s.roomRepo.Get(ctx, params.RoomCode)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			s.logger.InfoContext(ctx, "room not found", "room_code", params.RoomCode)
			return JoinRoomResponse{}, ErrRoomNotFound
		}

		return JoinRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	rm.Lock()
	defer rm.Unlock()

	if rm.IsClosed() {
		return JoinRoomResponse{}, ErrRoomNotFound
	}

	if err := s.connRepo.Bind(params.ConnID, rm.Code); err != nil {
		if errors.Is(err, connection.ErrAlreadyExists) {
			return JoinRoomResponse{}, ErrAlreadyInRoom
		}

		return JoinRoomResponse{}, fmt.Errorf("failed to bind connection: %w", err)
	}

	now := s.clock()
	guest := &domain.Guest{
		ID:       uuid.NewString(),
		Name:     params.Name,
		Emoji:    params.Emoji,
		ConnID:   params.ConnID,
		JoinedAt: now,
		IsActive: true,
	}
	if guest.Name == "" {
		guest.Name = fmt.Sprintf("Guest %d", rm.Guests.Length()+1)
	}
	if guest.Emoji == "" {
		guest.Emoji = defaultGuestEmoji
	}

	if err := rm.Guests.Add(guest); err != nil {
		s.connRepo.UnbindIfRoom(params.ConnID, rm.Code)
		return JoinRoomResponse{}, fmt.Errorf("failed to add guest: %w", err)
	}
	rm.Touch(now)

	resp := JoinRoomResponse{
		Success:      true,
		GuestID:      guest.ID,
		SyncSnapshot: rm.Snapshot(now),
	}
	ack(ackFn, resp)

	s.send(ctx, rm.AdminConnID, &domain.Message{
		Type: EventGuestJoined,
		Payload: GuestJoinedPayload{
			Guest:       *guest,
			TotalGuests: rm.Guests.Length(),
		},
	})
	s.broadcastGuestList(ctx, rm)

	metrics.GuestsJoined.Inc()
	s.events.Publish(ctx, roomevents.Event{
		Type:       roomevents.TypeGuestJoined,
		RoomCode:   rm.Code,
		GuestCount: rm.Guests.ActiveCount(),
		At:         now.UnixMilli(),
	})

	s.logger.InfoContext(ctx, "guest joined", "room_code", rm.Code, "guest_id", guest.ID, "total_guests", rm.Guests.Length())
	return resp, nil
}
