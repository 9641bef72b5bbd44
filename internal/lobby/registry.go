// internal/lobby/registry.go
//
// The Registry is the only place lobbies are created and found. It maps
// lobby id -> *Session behind an RWMutex: lookups take the shared lock, so
// traffic against independent lobbies never serializes on the registry —
// same-lobby operations serialize on the session's own lock instead.
//
// Lobbies do not live forever. Every session operation refreshes a
// last-activity timestamp, and a janitor goroutine evicts sessions that have
// been idle longer than the configured TTL.

package lobby

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Registry owns all live lobby sessions.
type Registry struct {
	mu      sync.RWMutex
	lobbies map[string]*Session

	kanji []string      // shared prompt list handed to every session
	ttl   time.Duration // idle time before eviction; <= 0 disables eviction
}

// NewRegistry builds an empty registry. kanji is the shared, immutable
// prompt list loaded once at startup.
func NewRegistry(kanji []string, ttl time.Duration) *Registry {
	return &Registry{
		lobbies: make(map[string]*Session),
		kanji:   kanji,
		ttl:     ttl,
	}
}

// Create makes a new lobby with creatorName as its first player, who
// therefore becomes the leader. The lobby id is regenerated until it is
// unused.
func (r *Registry) Create(creatorName string) (lobbyID, playerID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		lobbyID = NewLobbyID()
		if _, taken := r.lobbies[lobbyID]; !taken {
			break
		}
	}

	s = newSession(lobbyID, r.kanji, time.Now())
	playerID = NewPlayerID()
	s.AddPlayer(playerID, creatorName)
	r.lobbies[lobbyID] = s
	return lobbyID, playerID, s
}

// Join adds a new player to an existing lobby and returns the generated
// player id. The id is regenerated until it is free within that roster.
func (r *Registry) Join(lobbyID, playerName string) (string, error) {
	s, err := r.Get(lobbyID)
	if err != nil {
		return "", err
	}
	playerID := NewPlayerID()
	for s.HasPlayer(playerID) {
		playerID = NewPlayerID()
	}
	s.AddPlayer(playerID, playerName)
	return playerID, nil
}

// Get resolves a lobby id to its session.
func (r *Registry) Get(lobbyID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.lobbies[lobbyID]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return s, nil
}

// Len reports the number of live lobbies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lobbies)
}

// Sweep evicts sessions idle longer than the TTL and returns how many were
// removed. A no-op when eviction is disabled.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.lobbies {
		if now.Sub(s.LastActive()) > r.ttl {
			delete(r.lobbies, id)
			evicted++
			log.Info().Str("lobby", id).Time("lastActive", s.LastActive()).Msg("evicted idle lobby")
		}
	}
	return evicted
}

// Janitor sweeps the registry on the given interval until ctx is cancelled.
// Run it in its own goroutine.
func (r *Registry) Janitor(ctx context.Context, every time.Duration) {
	if r.ttl <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.Sweep(now); n > 0 {
				log.Debug().Int("evicted", n).Int("remaining", r.Len()).Msg("lobby sweep")
			}
		}
	}
}
