package room

import (
	"context"
	"errors"

	"github.com/sharetube/disco/internal/domain"
	"github.com/sharetube/disco/internal/repository/connection"
)

// Disconnect releases whatever connID held. An admin leaving closes the room
// for everyone; a guest leaving stays on the list as inactive.
func (s *service) Disconnect(ctx context.Context, connID string) error {
	code, err := s.connRepo.Unbind(connID)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return nil
		}

		return err
	}

	rm, err := s.roomRepo.Get(ctx, code)
	if err != nil {
		return nil
	}

	rm.Lock()
	if rm.IsClosed() {
		rm.Unlock()
		return nil
	}

	if rm.IsAdmin(connID) {
		guestCount := rm.Guests.ActiveCount()
		s.closeRoomLocked(ctx, rm, ReasonAdminDisconnected, rm.Guests.ActiveConnIDs())
		rm.Unlock()

		return s.deleteRoom(ctx, rm, ReasonAdminDisconnected, guestCount)
	}
	defer rm.Unlock()

	guest, err := rm.Guests.GetByConn(connID)
	if err != nil {
		return nil
	}

	// a departure is not room activity
	guest.IsActive = false

	s.send(ctx, rm.AdminConnID, &domain.Message{
		Type: EventGuestLeft,
		Payload: GuestLeftPayload{
			GuestID:          guest.ID,
			ActiveGuestCount: rm.Guests.ActiveCount(),
		},
	})
	s.broadcastGuestList(ctx, rm)

	s.logger.InfoContext(ctx, "guest left", "room_code", rm.Code, "guest_id", guest.ID)
	return nil
}
