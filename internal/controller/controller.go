package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/disco/internal/domain"
	wssender "github.com/sharetube/disco/internal/repository/ws-sender"
	"github.com/sharetube/disco/internal/service/room"
	"github.com/sharetube/disco/pkg/validator"
	"github.com/sharetube/disco/pkg/wsrouter"
)

type iRoomService interface {
	Dispatch(context.Context, string, room.Command, room.AckFunc) error
	LookupRoom(context.Context, string) (room.RoomInfo, error)
	RoomsCount() int
}

type iSender interface {
	Add(connID string, conn *websocket.Conn) (*wssender.Client, error)
	Remove(connID string) error
	Send(connID string, msg *domain.Message) error
}

const (
	defaultRoomCodeLength   = 6
	defaultRoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type Config struct {
	// AllowedOrigins restricts websocket upgrades and CORS. Empty allows any.
	AllowedOrigins []string
	PongWait       time.Duration
	// RoomCodeLength and RoomCodeAlphabet describe the codes the room store
	// issues. Join requests for anything else are refused without a lookup.
	RoomCodeLength   int
	RoomCodeAlphabet string
}

type controller struct {
	roomService    iRoomService
	sender         iSender
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	wsmux          *wsrouter.WSRouter
	allowedOrigins []string
	codeLength     int
	codeAlphabet   string
	logger         *slog.Logger
}

func NewController(roomService iRoomService, sender iSender, cfg *Config, logger *slog.Logger) *controller {
	c := &controller{
		roomService:    roomService,
		sender:         sender,
		validate:       validator.NewValidator(),
		allowedOrigins: cfg.AllowedOrigins,
		codeLength:     cfg.RoomCodeLength,
		codeAlphabet:   cfg.RoomCodeAlphabet,
		logger:         logger,
	}
	if c.codeLength < 1 {
		c.codeLength = defaultRoomCodeLength
	}
	if c.codeAlphabet == "" {
		c.codeAlphabet = defaultRoomCodeAlphabet
	}
	if err := c.validate.RegisterStringRule("roomcode", c.isRoomCode); err != nil {
		panic(err)
	}
	c.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return c.originAllowed(r.Header.Get("Origin"))
		},
	}
	c.wsmux = c.getWSRouter(wsrouter.WithPongWait(cfg.PongWait))

	return c
}
