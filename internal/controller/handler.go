package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/disco/internal/domain"
	"github.com/sharetube/disco/internal/service/room"
	"github.com/sharetube/disco/pkg/ctxlogger"
)

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	connID := uuid.NewString()
	ctx := context.WithValue(r.Context(), connIDCtxKey, connID)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", connID))

	client, err := c.sender.Add(connID, conn)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to register connection", "error", err)
		conn.Close()
		return
	}
	go client.WritePump(ctx)

	c.logger.InfoContext(ctx, "connection opened", "remote_addr", r.RemoteAddr)
	defer c.disconnect(ctx, connID)

	if err := c.wsmux.ServeConn(ctx, conn, c.reply); err != nil && !isExpectedClose(err) {
		c.logger.InfoContext(ctx, "connection read failed", "error", err)
	}
}

func (c controller) reply(ctx context.Context, replyType, id string, payload any) {
	if err := c.sender.Send(c.getConnIDFromCtx(ctx), &domain.Message{
		Type:    replyType,
		ID:      id,
		Payload: payload,
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to send reply", "error", err, "reply_type", replyType)
	}
}

// disconnect runs after the read loop ends, whatever the cause.
func (c controller) disconnect(ctx context.Context, connID string) {
	// the request context may already be canceled
	ctx = context.WithoutCancel(ctx)

	if err := c.roomService.Dispatch(ctx, connID, room.DisconnectCommand{}, nil); err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect", "error", err)
	}

	if err := c.sender.Remove(connID); err != nil {
		c.logger.DebugContext(ctx, "failed to remove connection", "error", err)
	}

	c.logger.InfoContext(ctx, "connection closed")
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
		errors.Is(err, context.Canceled)
}
