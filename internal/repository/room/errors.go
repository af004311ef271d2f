package room

import "errors"

var (
	ErrRoomNotFound           = errors.New("room not found")
	ErrRoomCodeSpaceExhausted = errors.New("room code space exhausted")
)
