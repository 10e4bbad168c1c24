package feedback

import "errors"

// Sentinel kinds for feedback errors.
var (
	ErrNoKoreaResult = errors.New("no korea result in simulation output")
)
