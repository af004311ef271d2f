package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/disco/internal/repository/roomevents"
)

type publisher struct {
	rc      *redis.Client
	channel string
	queue   chan roomevents.Event
	logger  *slog.Logger
}

func NewPublisher(rc *redis.Client, channel string, queueSize int, logger *slog.Logger) *publisher {
	return &publisher{
		rc:      rc,
		channel: channel,
		queue:   make(chan roomevents.Event, queueSize),
		logger:  logger,
	}
}

// Publish enqueues without blocking; events are dropped when the queue is full.
func (p *publisher) Publish(ctx context.Context, e roomevents.Event) {
	select {
	case p.queue <- e:
	default:
		p.logger.WarnContext(ctx, "room events queue full, dropping event", "type", e.Type, "room_code", e.RoomCode)
	}
}

// Run forwards queued events to Redis until ctx is done.
func (p *publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-p.queue:
			raw, err := json.Marshal(e)
			if err != nil {
				p.logger.ErrorContext(ctx, "failed to marshal room event", "error", err)
				continue
			}

			if err := p.rc.Publish(ctx, p.channel, raw).Err(); err != nil {
				p.logger.WarnContext(ctx, "failed to publish room event", "error", err, "type", e.Type)
			}
		}
	}
}
