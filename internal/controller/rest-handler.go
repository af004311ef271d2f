package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/disco/internal/service/room"
	"github.com/sharetube/disco/pkg/rest"
)

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomCode := c.normalizeRoomCode(chi.URLParam(r, "room-code"))
	if !c.isRoomCode(roomCode) {
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		return
	}

	info, err := c.roomService.LookupRoom(r.Context(), roomCode)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to lookup room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": info})
}

func (c controller) healthz(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"status": "ok",
		"rooms":  c.roomService.RoomsCount(),
	})
}
