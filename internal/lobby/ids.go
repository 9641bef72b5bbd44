// internal/lobby/ids.go
//
// Random identifier generation. Lobby ids are short so they can be shared and
// typed by players; player ids are longer. Uniqueness is enforced by the
// callers in registry.go, which retry until the id is free in the relevant
// namespace rather than assuming collisions never happen.

package lobby

import (
	"crypto/rand"
	"math/big"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	lobbyIDLength  = 6
	playerIDLength = 10
)

// randomID draws length characters uniformly from the alphanumeric alphabet
// using crypto/rand.
func randomID(length int) string {
	alphaLen := big.NewInt(int64(len(idAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, _ := rand.Int(rand.Reader, alphaLen)
		b[i] = idAlphabet[n.Int64()]
	}
	return string(b)
}

// NewLobbyID returns a random 6-character lobby id.
func NewLobbyID() string { return randomID(lobbyIDLength) }

// NewPlayerID returns a random 10-character player id.
func NewPlayerID() string { return randomID(playerIDLength) }
