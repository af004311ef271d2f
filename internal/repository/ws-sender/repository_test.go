package wssender

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sharetube/disco/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(queueSize int) *Repo {
	return NewRepo(&Config{
		QueueSize:  queueSize,
		PingPeriod: time.Minute,
		WriteWait:  time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func isClosed(c *Client) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

func TestAddRemove(t *testing.T) {
	r := newTestRepo(4)

	_, err := r.Add("c1", nil)
	require.NoError(t, err)
	_, err = r.Add("c1", nil)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Remove("c1"))
	assert.ErrorIs(t, r.Remove("c1"), ErrNotFound)
	assert.ErrorIs(t, r.Send("c1", &domain.Message{Type: "x"}), ErrNotFound)
}

func TestSendDropsLossyMessagesWhenFull(t *testing.T) {
	r := newTestRepo(2)
	c, err := r.Add("c1", nil)
	require.NoError(t, err)

	for range 2 {
		require.NoError(t, r.Send("c1", &domain.Message{Type: "time-sync", Lossy: true}))
	}
	assert.ErrorIs(t, r.Send("c1", &domain.Message{Type: "time-sync", Lossy: true}), ErrQueueFull)
	assert.False(t, isClosed(c), "a dropped lossy message must not close the client")
}

func TestSendClosesLaggingClient(t *testing.T) {
	r := newTestRepo(1)
	c, err := r.Add("c1", nil)
	require.NoError(t, err)

	require.NoError(t, r.Send("c1", &domain.Message{Type: "playback-update"}))
	assert.ErrorIs(t, r.Send("c1", &domain.Message{Type: "playback-update"}), ErrQueueFull)
	assert.True(t, isClosed(c))

	assert.ErrorIs(t, r.Send("c1", &domain.Message{Type: "playback-update"}), ErrClosed)
}

func TestSendDoesNotBlockOtherRecipients(t *testing.T) {
	r := newTestRepo(1)
	_, err := r.Add("slow", nil)
	require.NoError(t, err)
	fast, err := r.Add("fast", nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			_ = r.Send("slow", &domain.Message{Type: "time-sync", Lossy: true})
		}
		_ = r.Send("fast", &domain.Message{Type: "track-update"})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a slow recipient")
	}
	assert.Len(t, fast.send, 1)
}
