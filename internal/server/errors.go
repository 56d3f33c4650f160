package server

import (
	"errors"
	"fmt"
)

// Room and registry errors. Each carries the fixed user-facing
// message it is reported with; all are recoverable and never
// terminate a connection.
var (
	ErrMaxRoomCount       = errors.New("no more rooms available on this server")
	ErrMaxCapacityReached = errors.New("room is full")
	ErrNameOccupied       = errors.New("room already exists")
	ErrUserExists         = errors.New("user already exists in the room")
	ErrPasswordRequired   = errors.New("room is password protected")
	ErrWrongPassword      = errors.New("incorrect room password")
	ErrRoomNotFound       = errors.New("room does not exist")
	ErrInvalidAction      = errors.New("invalid action")
)

func invalidAction(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidAction, reason)
}
