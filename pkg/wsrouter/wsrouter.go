package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

const (
	ReplyTypeAck   = "ack"
	ReplyTypeError = "error"
)

var ErrUnknownMessageType = errors.New("unknown message type")

type message struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// AckFunc sends the ack of the message being handled. Only the first call
// has an effect.
type AckFunc func(payload any)

// HandlerFunc handles one message. An error is replied to the sender unless
// the handler already acked.
type HandlerFunc func(ctx context.Context, payload json.RawMessage, ack AckFunc) error

// ReplyFunc delivers an ack or error reply. Writes must not happen on the
// reading goroutine, so the caller decides how replies reach the connection.
type ReplyFunc func(ctx context.Context, replyType, id string, payload any)

type Option func(*WSRouter)

func WithReadLimit(limit int64) Option {
	return func(r *WSRouter) {
		if limit > 0 {
			r.readLimit = limit
		}
	}
}

func WithPongWait(d time.Duration) Option {
	return func(r *WSRouter) {
		if d > 0 {
			r.pongWait = d
		}
	}
}

type WSRouter struct {
	routes    map[string]HandlerFunc
	readLimit int64
	pongWait  time.Duration
}

func New(opts ...Option) *WSRouter {
	r := &WSRouter{
		routes:    make(map[string]HandlerFunc),
		readLimit: 64 << 10,
		pongWait:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// Route runs a single raw message through the routing table.
func (r *WSRouter) Route(ctx context.Context, data []byte, reply ReplyFunc) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		reply(ctx, ReplyTypeError, "", ErrorPayload{Message: "malformed message"})
		return
	}

	handler, exists := r.routes[msg.Type]
	if !exists {
		reply(ctx, ReplyTypeError, msg.ID, ErrorPayload{Message: ErrUnknownMessageType.Error()})
		return
	}

	ctx = context.WithValue(ctx, messageTypeKey, msg.Type)
	ctx = context.WithValue(ctx, messageIDKey, msg.ID)

	acked := false
	ack := func(payload any) {
		if acked {
			return
		}
		acked = true
		reply(ctx, ReplyTypeAck, msg.ID, payload)
	}

	if err := handler(ctx, msg.Payload, ack); err != nil && !acked {
		reply(ctx, ReplyTypeError, msg.ID, ErrorPayload{Message: err.Error()})
	}
}

// ServeConn reads messages until the connection fails or ctx is done.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn, reply ReplyFunc) error {
	defer conn.Close()

	conn.SetReadLimit(r.readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(r.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(r.pongWait))
	})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if messageType != websocket.TextMessage {
			continue
		}

		r.Route(ctx, data, reply)
	}
}
