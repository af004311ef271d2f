package room

import (
	"context"
	"errors"

	"github.com/sharetube/disco/internal/domain"
	"github.com/sharetube/disco/internal/metrics"
	"github.com/sharetube/disco/internal/repository/roomevents"
)

func (s *service) now() int64 {
	return s.clock().UnixMilli()
}

// isBound reports whether connID belongs to a live room. A binding left over
// from a room that is already closed is dropped.
func (s *service) isBound(ctx context.Context, connID string) bool {
	code, err := s.connRepo.GetRoomCode(connID)
	if err != nil {
		return false
	}

	rm, err := s.roomRepo.Get(ctx, code)
	if err == nil {
		rm.Lock()
		closed := rm.IsClosed()
		rm.Unlock()
		if !closed {
			return true
		}
	}

	s.connRepo.UnbindIfRoom(connID, code)
	return false
}

// lockBoundRoom returns the live room connID belongs to, locked.
func (s *service) lockBoundRoom(ctx context.Context, connID string) (*domain.Room, bool) {
	code, err := s.connRepo.GetRoomCode(connID)
	if err != nil {
		return nil, false
	}

	rm, err := s.roomRepo.Get(ctx, code)
	if err != nil {
		return nil, false
	}

	rm.Lock()
	if rm.IsClosed() {
		rm.Unlock()
		return nil, false
	}

	return rm, true
}

// lockAdminRoom is lockBoundRoom restricted to the admin of record.
func (s *service) lockAdminRoom(ctx context.Context, connID string) (*domain.Room, bool) {
	rm, ok := s.lockBoundRoom(ctx, connID)
	if !ok {
		s.logger.DebugContext(ctx, "ignoring admin operation from unbound connection", "conn_id", connID)
		return nil, false
	}

	if !rm.IsAdmin(connID) {
		rm.Unlock()
		s.logger.DebugContext(ctx, "ignoring admin operation from non-admin connection", "conn_id", connID, "room_code", rm.Code)
		return nil, false
	}

	return rm, true
}

func (s *service) send(ctx context.Context, connID string, msg *domain.Message) {
	if err := s.sender.Send(connID, msg); err != nil {
		s.logger.DebugContext(ctx, "failed to send message", "error", err, "conn_id", connID, "type", msg.Type)
	}
}

func (s *service) broadcast(ctx context.Context, connIDs []string, msg *domain.Message) {
	for _, connID := range connIDs {
		s.send(ctx, connID, msg)
	}
}

// broadcastGuestList sends the full guest list to the admin and every active
// guest. Caller holds the room lock.
func (s *service) broadcastGuestList(ctx context.Context, rm *domain.Room) {
	s.broadcast(ctx, rm.Recipients(), &domain.Message{
		Type:    EventGuestsUpdate,
		Payload: GuestsUpdatePayload{GuestList: rm.Guests.AsList()},
	})
}

// closeRoomLocked notifies recipients and marks the room closed. Caller holds
// the room lock and must call deleteRoom after releasing it.
func (s *service) closeRoomLocked(ctx context.Context, rm *domain.Room, reason string, recipients []string) {
	s.broadcast(ctx, recipients, &domain.Message{
		Type:    EventRoomClosed,
		Payload: RoomClosedPayload{Reason: reason},
	})
	rm.Close()
}

func (s *service) deleteRoom(ctx context.Context, rm *domain.Room, reason string, guestCount int) error {
	if err := s.roomRepo.Delete(ctx, rm.Code); err != nil {
		return err
	}

	metrics.RoomsActive.Dec()
	metrics.RoomsClosed.WithLabelValues(reason).Inc()
	s.events.Publish(ctx, roomevents.Event{
		Type:       roomevents.TypeRoomClosed,
		RoomCode:   rm.Code,
		Reason:     reason,
		GuestCount: guestCount,
		At:         s.now(),
	})

	s.logger.InfoContext(ctx, "room closed", "room_code", rm.Code, "reason", reason)
	return nil
}

// FailureFromError builds the negative answer of an acknowledged operation.
func FailureFromError(err error) FailureResponse {
	var msg string
	switch {
	case errors.Is(err, ErrRoomNotFound):
		msg = "Room not found"
	case errors.Is(err, ErrNotInRoom):
		msg = "Not in a room"
	case errors.Is(err, ErrAlreadyInRoom):
		msg = "Already in a room"
	default:
		msg = "internal error"
	}

	return FailureResponse{Success: false, Error: msg}
}

func ack(fn AckFunc, payload any) {
	if fn != nil {
		fn(payload)
	}
}
