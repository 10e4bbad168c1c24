package repository

import "errors"

// Sentinel kinds for note store errors.
var (
	ErrNotFound    = errors.New("team notes not found")
	ErrInvalidTeam = errors.New("invalid team id")
)
