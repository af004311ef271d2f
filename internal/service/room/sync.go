package room

import "context"

// RequestSync answers a guest with the current snapshot. The admin owns the
// playback state and is not served.
func (s *service) RequestSync(ctx context.Context, connID string, ackFn AckFunc) (RequestSyncResponse, error) {
	rm, ok := s.lockBoundRoom(ctx, connID)
	if !ok {
		return RequestSyncResponse{}, ErrNotInRoom
	}
	defer rm.Unlock()

	if rm.IsAdmin(connID) {
		s.logger.DebugContext(ctx, "ignoring request-sync from admin", "room_code", rm.Code)
		return RequestSyncResponse{}, ErrNotInRoom
	}

	resp := RequestSyncResponse{
		Success:      true,
		SyncSnapshot: rm.Snapshot(s.clock()),
	}
	ack(ackFn, resp)

	return resp, nil
}

type PingParams struct {
	ClientTimestamp *int64
}

// Ping answers with the server clock. It needs no room.
func (s *service) Ping(_ context.Context, params *PingParams, ackFn AckFunc) PingResponse {
	resp := PingResponse{
		ServerTimestamp: s.now(),
		ClientTimestamp: params.ClientTimestamp,
	}
	ack(ackFn, resp)

	return resp
}

type RoomInfo struct {
	RoomCode         string `json:"room_code"`
	GuestCount       int    `json:"guest_count"`
	ActiveGuestCount int    `json:"active_guest_count"`
	HasTrack         bool   `json:"has_track"`
	IsPlaying        bool   `json:"is_playing"`
}

// LookupRoom returns a public summary of a live room.
func (s *service) LookupRoom(ctx context.Context, roomCode string) (RoomInfo, error) {
	rm, err := s.roomRepo.Get(ctx, roomCode)
	if err != nil {
		return RoomInfo{}, ErrRoomNotFound
	}

	rm.Lock()
	defer rm.Unlock()

	if rm.IsClosed() {
		return RoomInfo{}, ErrRoomNotFound
	}

	return RoomInfo{
		RoomCode:         rm.Code,
		GuestCount:       rm.Guests.Length(),
		ActiveGuestCount: rm.Guests.ActiveCount(),
		HasTrack:         rm.Player.CurrentTrack != nil,
		IsPlaying:        rm.Player.IsPlaying,
	}, nil
}
