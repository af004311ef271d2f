package controller

import (
	"github.com/sharetube/disco/internal/service/room"
	"github.com/sharetube/disco/pkg/wsrouter"
)

func (c controller) getWSRouter(opts ...wsrouter.Option) *wsrouter.WSRouter {
	mux := wsrouter.New(opts...)

	// admin
	mux.Handle(room.OpCreateRoom, c.wsLoggingMw(c.handleCreateRoom))
	mux.Handle(room.OpUpdateTrack, c.wsLoggingMw(c.handleUpdateTrack))
	mux.Handle(room.OpPlayPause, c.wsLoggingMw(c.handlePlayPause))
	mux.Handle(room.OpSyncTime, c.wsLoggingMw(c.handleSyncTime))

	// guest
	mux.Handle(room.OpJoinRoom, c.wsLoggingMw(c.handleJoinRoom))
	mux.Handle(room.OpRequestSync, c.wsLoggingMw(c.handleRequestSync))

	mux.Handle(room.OpPing, c.handlePing)

	return mux
}
