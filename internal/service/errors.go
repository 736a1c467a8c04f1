package service

import "errors"

var (
	// ErrLobbyNotFound means no live lobby exists for the join code.
	ErrLobbyNotFound = errors.New("lobby not found")

	// ErrCodeSpaceExhausted means the allocator gave up finding a free
	// join code within its retry budget.
	ErrCodeSpaceExhausted = errors.New("join code space exhausted")
)

// Admission messages returned to joining participants. The wording is part
// of the client contract.
const (
	MsgJoined       = "joined the lobby"
	MsgPINNotFound  = "PIN not recognized"
	MsgLobbyFull    = "Maximum amount of participants reached"
	MsgLobbyStarted = "Cannot join lobby after it has started"
)
