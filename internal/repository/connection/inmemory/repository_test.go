package inmemory

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/sharetube/disco/internal/repository/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo() *repo {
	return NewRepo(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBindUnbind(t *testing.T) {
	r := newTestRepo()

	require.NoError(t, r.Bind("c1", "ROOM01"))
	assert.ErrorIs(t, r.Bind("c1", "ROOM02"), connection.ErrAlreadyExists)

	code, err := r.GetRoomCode("c1")
	require.NoError(t, err)
	assert.Equal(t, "ROOM01", code)

	code, err = r.Unbind("c1")
	require.NoError(t, err)
	assert.Equal(t, "ROOM01", code)

	_, err = r.GetRoomCode("c1")
	assert.ErrorIs(t, err, connection.ErrNotFound)
	_, err = r.Unbind("c1")
	assert.ErrorIs(t, err, connection.ErrNotFound)
}

func TestUnbindIfRoom(t *testing.T) {
	r := newTestRepo()
	require.NoError(t, r.Bind("c1", "ROOM01"))

	assert.False(t, r.UnbindIfRoom("c1", "ROOM02"))
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.UnbindIfRoom("c1", "ROOM01"))
	assert.Equal(t, 0, r.Len())
}

func TestConcurrentAccess(t *testing.T) {
	r := newTestRepo()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("c%d", i)
			assert.NoError(t, r.Bind(connID, "ROOM01"))
			_, _ = r.GetRoomCode(connID)
			_, err := r.Unbind(connID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
