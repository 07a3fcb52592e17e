package model

import "errors"

// Common errors used across the application
var (
	// Registry errors
	ErrPlayerNotFound      = errors.New("player not found")
	ErrDuplicateConnection = errors.New("connection already has a player")
	ErrUnknownConnection   = errors.New("unknown connection")

	// Action rejections, reported to the requester only
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNothingToSell     = errors.New("nothing to sell")

	// Chat errors
	ErrEmptyMessage = errors.New("empty message")

	// Query errors
	ErrInvalidLevel = errors.New("invalid level")

	// Dispatcher errors
	ErrDispatcherStopped = errors.New("dispatcher stopped")
)
