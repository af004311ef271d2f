package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	t1 := Track{ID: "t1", Name: "One", Artists: []string{"A"}}
	playlist := []Track{t1, {ID: "t2"}}

	r := NewRoom(&NewRoomParams{
		Code:        "Q7K2PX",
		AdminID:     "a1",
		AdminConnID: "conn-admin",
		Playlist:    playlist,
		CreatedAt:   now,
	})

	assert.True(t, r.IsAdmin("conn-admin"))
	assert.False(t, r.IsAdmin("someone-else"))
	assert.False(t, r.IsAdmin(""))
	assert.Equal(t, now, r.LastActivityAt)
	assert.Nil(t, r.Player.CurrentTrack)
	assert.Equal(t, 2, r.Playlist.Length())

	// the room keeps its own copy
	playlist[0].Artists[0] = "changed"
	assert.Equal(t, "A", r.Playlist.AsList()[0].Artists[0])

	snap := r.Snapshot(now)
	assert.Nil(t, snap.Track)
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, int64(0), snap.CurrentTimeMs)
	assert.Len(t, snap.Playlist, 2)
	assert.Equal(t, now.UnixMilli(), snap.ServerTimestamp)
}

func TestRoomExpiry(t *testing.T) {
	now := time.Now()
	r := NewRoom(&NewRoomParams{Code: "ABCDEF", AdminConnID: "c", CreatedAt: now.Add(-3 * time.Hour)})

	assert.True(t, r.IsExpired(now, 2*time.Hour))
	r.Touch(now)
	assert.False(t, r.IsExpired(now, 2*time.Hour))
}

func TestPlayerSetTrackRewinds(t *testing.T) {
	p := NewPlayer(nil)
	p.SetState(true, 42_000)
	p.SetTrack(&Track{ID: "t1"})

	require.NotNil(t, p.CurrentTrack)
	assert.Equal(t, "t1", p.CurrentTrack.ID)
	assert.Equal(t, int64(0), p.CurrentTimeMs)
	assert.True(t, p.IsPlaying)
}

func TestGuests(t *testing.T) {
	base := time.Now()
	g := NewGuests()
	require.NoError(t, g.Add(&Guest{ID: "g2", ConnID: "c2", IsActive: true, JoinedAt: base.Add(time.Second)}))
	require.NoError(t, g.Add(&Guest{ID: "g1", ConnID: "c1", IsActive: true, JoinedAt: base}))
	assert.ErrorIs(t, g.Add(&Guest{ID: "g1"}), ErrGuestAlreadyExists)

	guest, err := g.GetByConn("c2")
	require.NoError(t, err)
	guest.IsActive = false

	_, err = g.GetByConn("c2")
	assert.ErrorIs(t, err, ErrGuestNotFound)

	list := g.AsList()
	require.Len(t, list, 2)
	assert.Equal(t, "g1", list[0].ID)
	assert.Equal(t, "g2", list[1].ID)
	assert.False(t, list[1].IsActive)

	assert.Equal(t, 2, g.Length())
	assert.Equal(t, 1, g.ActiveCount())
	assert.Equal(t, []string{"c1"}, g.ActiveConnIDs())
	assert.ElementsMatch(t, []string{"c1", "c2"}, g.ConnIDs())
}
