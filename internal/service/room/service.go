package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sharetube/disco/internal/domain"
	"github.com/sharetube/disco/internal/repository/room"
	"github.com/sharetube/disco/internal/repository/roomevents"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotInRoom      = errors.New("not in a room")
	ErrAlreadyInRoom  = errors.New("already in a room")
	ErrUnknownCommand = errors.New("unknown command")
)

type iRoomRepo interface {
	Create(context.Context, *room.CreateRoomParams) (*domain.Room, error)
	Get(context.Context, string) (*domain.Room, error)
	Delete(context.Context, string) error
	List(context.Context) []*domain.Room
	Len() int
}

type iConnRepo interface {
	Bind(connID, roomCode string) error
	Unbind(connID string) (string, error)
	UnbindIfRoom(connID, roomCode string) bool
	GetRoomCode(connID string) (string, error)
}

type iSender interface {
	Send(connID string, msg *domain.Message) error
}

type iEventPublisher interface {
	Publish(context.Context, roomevents.Event)
}

// AckFunc answers the caller of an acknowledged operation. It is invoked at
// most once, before any broadcast that follows from the same operation.
type AckFunc func(payload any)

type Config struct {
	// RoomTTL is the inactivity after which the reaper closes a room.
	RoomTTL time.Duration
	Clock   func() time.Time
}

type service struct {
	roomRepo iRoomRepo
	connRepo iConnRepo
	sender   iSender
	events   iEventPublisher
	roomTTL  time.Duration
	clock    func() time.Time
	logger   *slog.Logger
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, sender iSender, events iEventPublisher, cfg *Config, logger *slog.Logger) *service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	if events == nil {
		events = roomevents.Nop{}
	}

	return &service{
		roomRepo: roomRepo,
		connRepo: connRepo,
		sender:   sender,
		events:   events,
		roomTTL:  cfg.RoomTTL,
		clock:    clock,
		logger:   logger,
	}
}

func (s *service) RoomsCount() int {
	return s.roomRepo.Len()
}
