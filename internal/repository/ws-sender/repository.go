package wssender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/disco/internal/domain"
	"github.com/sharetube/disco/internal/metrics"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrQueueFull     = errors.New("send queue full")
	ErrClosed        = errors.New("client closed")
)

type Config struct {
	QueueSize  int
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// Client owns the write side of one websocket connection.
type Client struct {
	id        string
	conn      *websocket.Conn
	send      chan *domain.Message
	done      chan struct{}
	closeOnce sync.Once
	lagging   atomic.Bool

	pingPeriod time.Duration
	writeWait  time.Duration
	logger     *slog.Logger
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close stops the write pump, which then closes the connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) enqueue(msg *domain.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- msg:
		metrics.MessagesSent.WithLabelValues(msg.Type).Inc()
		return nil
	default:
		metrics.MessagesDropped.WithLabelValues(msg.Type).Inc()
		if !msg.Lossy {
			c.lagging.Store(true)
			c.Close()
		}
		return ErrQueueFull
	}
}

// WritePump is the only writer of the connection. It returns once the client
// is closed, a write fails or ctx is done.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.DebugContext(ctx, "failed to write message", "error", err, "type", msg.Type)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(ctx, "failed to write ping", "error", err)
				return
			}
		case <-c.done:
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if c.lagging.Load() {
				closeMsg = websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too slow")
			}
			_ = c.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(c.writeWait))
			return
		case <-ctx.Done():
			return
		}
	}
}

type Repo struct {
	clients map[string]*Client
	mu      sync.RWMutex
	cfg     Config
	logger  *slog.Logger
}

func NewRepo(cfg *Config, logger *slog.Logger) *Repo {
	return &Repo{
		clients: make(map[string]*Client),
		cfg:     *cfg,
		logger:  logger,
	}
}

func (r *Repo) Add(connID string, conn *websocket.Conn) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[connID]; ok {
		return nil, ErrAlreadyExists
	}

	c := &Client{
		id:   connID,
		conn: conn,
		send: make(chan *domain.Message, r.cfg.QueueSize),
		done: make(chan struct{}),

		pingPeriod: r.cfg.PingPeriod,
		writeWait:  r.cfg.WriteWait,
		logger:     r.logger,
	}
	r.clients[connID] = c
	metrics.ConnectionsActive.Inc()

	return c, nil
}

func (r *Repo) Remove(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[connID]
	if !ok {
		return ErrNotFound
	}

	c.Close()
	delete(r.clients, connID)
	metrics.ConnectionsActive.Dec()

	return nil
}

// Send never blocks. A lossy message is dropped when the recipient lags; any
// other message on a full queue also closes the recipient.
func (r *Repo) Send(connID string, msg *domain.Message) error {
	r.mu.RLock()
	c, ok := r.clients[connID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	return c.enqueue(msg)
}

func (r *Repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}
