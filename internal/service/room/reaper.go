package room

import (
	"context"
	"time"
)

// Sweep closes every room idle for longer than the configured TTL and
// returns how many it closed.
func (s *service) Sweep(ctx context.Context) int {
	now := s.clock()
	closed := 0
	for _, rm := range s.roomRepo.List(ctx) {
		rm.Lock()
		if rm.IsClosed() || !rm.IsExpired(now, s.roomTTL) {
			rm.Unlock()
			continue
		}

		guestCount := rm.Guests.ActiveCount()
		s.closeRoomLocked(ctx, rm, ReasonExpired, rm.Recipients())
		rm.Unlock()

		if err := s.deleteRoom(ctx, rm, ReasonExpired, guestCount); err != nil {
			s.logger.WarnContext(ctx, "failed to delete expired room", "error", err, "room_code", rm.Code)
			continue
		}
		closed++
	}

	if closed > 0 {
		s.logger.InfoContext(ctx, "reaper closed inactive rooms", "count", closed, "remaining", s.roomRepo.Len())
	}

	return closed
}

// RunReaper sweeps every interval until ctx is done.
func (s *service) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
