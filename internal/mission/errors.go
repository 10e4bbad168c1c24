package mission

import "errors"

// Sentinel kinds for mission flow errors.
var (
	ErrBadTransition = errors.New("invalid step transition")
	ErrBadSecret     = errors.New("wrong admin secret")
	ErrBadTeam       = errors.New("team out of range")
	ErrNotAdmin      = errors.New("admin role required")
	ErrNoResults     = errors.New("nothing to submit")
)
