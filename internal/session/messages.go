// Package session implements the admin-to-learners broadcast protocol:
// one well-known channel carries reveal and reset control messages to
// every subscribed learner session.
package session

// GlobalChannel is the well-known channel name for session control
// messages. All sessions subscribe to it regardless of team.
const GlobalChannel = "global_session_sync"

// Control message types.
const (
	TypeRevealResults = "REVEAL_RESULTS"
	TypeResetResults  = "RESET_RESULTS"
)

// ControlMessage is the payload published on GlobalChannel.
type ControlMessage struct {
	Type string `json:"type"`
}
