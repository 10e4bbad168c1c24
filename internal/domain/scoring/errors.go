package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrInvalidPrice reifies the "no update" outcome: the engine computed
	// nothing and the caller should keep its previous result set.
	ErrInvalidPrice = errors.New("invalid bid price")
)
