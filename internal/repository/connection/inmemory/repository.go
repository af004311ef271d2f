package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/disco/internal/repository/connection"
)

// repo maps a live connection to the room it belongs to.
type repo struct {
	roomByConn map[string]string
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		roomByConn: make(map[string]string),
		logger:     logger,
	}
}

func (r *repo) Bind(connID, roomCode string) error {
	funcName := "connection.inmemory.Bind"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "conn_id", connID, "room_code", roomCode)
	if _, ok := r.roomByConn[connID]; ok {
		r.logger.Debug(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.roomByConn[connID] = roomCode
	return nil
}

func (r *repo) Unbind(connID string) (string, error) {
	funcName := "connection.inmemory.Unbind"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "conn_id", connID)
	roomCode, ok := r.roomByConn[connID]
	if !ok {
		return "", connection.ErrNotFound
	}

	delete(r.roomByConn, connID)
	return roomCode, nil
}

// UnbindIfRoom removes the entry only while it still points at roomCode.
func (r *repo) UnbindIfRoom(connID, roomCode string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roomByConn[connID] != roomCode {
		return false
	}

	delete(r.roomByConn, connID)
	return true
}

func (r *repo) GetRoomCode(connID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomCode, ok := r.roomByConn[connID]
	if !ok {
		return "", connection.ErrNotFound
	}

	return roomCode, nil
}

func (r *repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.roomByConn)
}
