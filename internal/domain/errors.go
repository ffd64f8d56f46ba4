package domain

import "errors"

var (
	ErrInvalidRoomCode = errors.New("room code is required")
	ErrRoomFull        = errors.New("room is full")
	ErrInvalidMessage  = errors.New("invalid message")
)
