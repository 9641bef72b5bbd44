// internal/lobby/errors.go
//
// Sentinel errors for lobby and player operations. The HTTP layer maps these
// onto status codes; callers should test with errors.Is.

package lobby

import "errors"

var (
	// ErrLobbyNotFound is returned when a lobby id is not in the registry.
	ErrLobbyNotFound = errors.New("lobby not found")

	// ErrPlayerNotFound is returned by point lookups for unknown player ids.
	ErrPlayerNotFound = errors.New("player not found in lobby")

	// ErrNotLeader is returned when a non-leader calls a leader-only operation.
	ErrNotLeader = errors.New("only the lobby leader can do that")

	// ErrWrongPhase is returned when an operation is invalid for the current
	// game status, e.g. starting a game that is already playing.
	ErrWrongPhase = errors.New("game is not in lobby state")
)
