package notes

import "errors"

// Sentinel kinds for note sync errors.
var (
	ErrClosed          = errors.New("syncer closed")
	ErrIndexOutOfRange = errors.New("note index out of range")
)
