package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sharetube/disco/pkg/ctxlogger"
	"github.com/sharetube/disco/pkg/wsrouter"
)

func (c controller) generateTimeBasedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.generateTimeBasedID()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

func (c controller) wsLoggingMw(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage, ack wsrouter.AckFunc) error {
		ctx = ctxlogger.AppendCtx(ctx,
			slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)),
			slog.String("message_id", wsrouter.GetMessageIDFromCtx(ctx)),
		)
		c.logger.DebugContext(ctx, "websocket message received", "payload_size", len(payload))

		start := time.Now()
		err := next(ctx, payload, ack)
		if err != nil {
			c.logger.InfoContext(ctx, "websocket message rejected", "error", err)
		}

		c.logger.DebugContext(ctx, "websocket message handled", "processing_time_us", time.Since(start).Microseconds())
		return err
	}
}
