// internal/lobby/session.go
//
// A Session is the live state of one lobby: roster, leader, settings, game
// status, and the current kanji prompt.
//
// Concurrency model:
//   - One sync.RWMutex guards every mutable field, so multi-field reads
//     (Info) and multi-field writes (StartGame) are atomic with respect to
//     each other. Per-field locking is deliberately avoided: it lets a poller
//     observe a torn snapshot, e.g. status already Playing against the old
//     roster.
//   - The last-activity timestamp is a separate atomic so that read
//     operations (the 1–2s polling traffic) can refresh it without taking
//     the write lock.
//
// The kanji list is shared, immutable corpus data; the session never
// mutates it.

package lobby

import (
	"crypto/rand"
	"math/big"
	"sync"
	"sync/atomic"
	"time"
)

// Status is the lobby's game phase.
type Status string

const (
	StatusLobby    Status = "Lobby"
	StatusPlaying  Status = "Playing"
	StatusFinished Status = "Finished" // modeled but never entered; no rule ends a game yet
)

// Settings are the lobby's game settings, replaced wholesale by the leader.
type Settings struct {
	DifficultyLevels []string `json:"difficulty_levels"`
	TimeLimitSeconds *int     `json:"time_limit_seconds"`
	MaxPlayers       int      `json:"max_players"`
}

// DefaultSettings mirrors the defaults new lobbies start with.
func DefaultSettings() Settings {
	return Settings{
		DifficultyLevels: []string{"N1", "N2", "N3", "N4", "N5"},
		TimeLimitSeconds: nil,
		MaxPlayers:       4,
	}
}

// Player is one roster entry. Score only ever increments by one.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

// Info is a consistent point-in-time snapshot of a session, shaped for the
// polling clients.
type Info struct {
	LobbyID  string   `json:"lobby_id"`
	LeaderID string   `json:"leader_id"`
	Players  []Player `json:"players"`
	Settings Settings `json:"settings"`
	Status   Status   `json:"status"`
}

// Session is one lobby's state. Create via Registry.Create.
type Session struct {
	id    string
	kanji []string // immutable, shared across sessions

	mu           sync.RWMutex
	players      []*Player
	byID         map[string]int // player id -> roster index
	leaderID     string
	settings     Settings
	status       Status
	currentKanji string // "" until the first prompt is generated

	lastActive atomic.Int64 // unix nanos, refreshed by every operation
}

func newSession(id string, kanji []string, now time.Time) *Session {
	s := &Session{
		id:       id,
		kanji:    kanji,
		byID:     make(map[string]int),
		settings: DefaultSettings(),
		status:   StatusLobby,
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

// ID returns the lobby id.
func (s *Session) ID() string { return s.id }

func (s *Session) touch() { s.lastActive.Store(time.Now().UnixNano()) }

// LastActive reports when the session was last used by any operation.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// AddPlayer appends a player to the roster. The first player ever added
// becomes the lobby leader; the return value reports whether this call did.
// Player ids are caller-supplied and not validated against the roster.
func (s *Session) AddPlayer(id, name string) (isLeader bool) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	isLeader = len(s.players) == 0
	if isLeader {
		s.leaderID = id
	}
	s.byID[id] = len(s.players)
	s.players = append(s.players, &Player{
		ID:       id,
		Name:     name,
		JoinedAt: time.Now().UTC(),
	})
	return isLeader
}

// HasPlayer reports whether id is already in the roster.
func (s *Session) HasPlayer(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// IsLeader reports whether playerID is the lobby leader.
func (s *Session) IsLeader(playerID string) bool {
	s.touch()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaderID == playerID
}

// UpdateSettings replaces the settings wholesale. Leader only; field ranges
// are intentionally not validated.
func (s *Session) UpdateSettings(playerID string, settings Settings) error {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leaderID != playerID {
		return ErrNotLeader
	}
	s.settings = settings
	return nil
}

// StartGame moves the lobby into the Playing phase and issues the first
// kanji prompt. Both effects happen under one critical section so pollers
// never observe a started game without a prompt. Leader only, and only from
// the Lobby phase.
func (s *Session) StartGame(playerID string) error {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leaderID != playerID {
		return ErrNotLeader
	}
	if s.status != StatusLobby {
		return ErrWrongPhase
	}
	s.status = StatusPlaying
	s.currentKanji = pickKanji(s.kanji)
	return nil
}

// Info returns a consistent snapshot of the whole session.
func (s *Session) Info() Info {
	s.touch()
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]Player, len(s.players))
	for i, p := range s.players {
		players[i] = *p
	}
	return Info{
		LobbyID:  s.id,
		LeaderID: s.leaderID,
		Players:  players,
		Settings: s.settings,
		Status:   s.status,
	}
}

// Players returns a copy of the roster in join order.
func (s *Session) Players() []Player {
	s.touch()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Player, len(s.players))
	for i, p := range s.players {
		out[i] = *p
	}
	return out
}

// Player returns a single roster entry by id.
func (s *Session) Player(playerID string) (Player, error) {
	s.touch()
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[playerID]
	if !ok {
		return Player{}, ErrPlayerNotFound
	}
	return *s.players[i], nil
}

// PlayerScore returns the player's current score.
func (s *Session) PlayerScore(playerID string) (int, error) {
	p, err := s.Player(playerID)
	if err != nil {
		return 0, err
	}
	return p.Score, nil
}

// PlayerName returns the player's display name.
func (s *Session) PlayerName(playerID string) (string, error) {
	p, err := s.Player(playerID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

// IncrementScore adds exactly one point to the player's score and returns
// the new value.
func (s *Session) IncrementScore(playerID string) (int, error) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[playerID]
	if !ok {
		return 0, ErrPlayerNotFound
	}
	s.players[i].Score++
	return s.players[i].Score, nil
}

// CurrentKanji returns the current prompt, or ok=false if none has been
// generated yet.
func (s *Session) CurrentKanji() (kanji string, ok bool) {
	s.touch()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentKanji, s.currentKanji != ""
}

// NewKanji draws a fresh prompt from the lobby's kanji list, records it as
// current, and returns it. Safe under concurrent calls; last write wins,
// which is fine because clients poll and converge.
func (s *Session) NewKanji() string {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentKanji = pickKanji(s.kanji)
	return s.currentKanji
}

// pickKanji samples the list uniformly with crypto/rand.
func pickKanji(list []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	return list[n.Int64()]
}
