package lobby

import (
	"errors"
	"testing"
	"time"
)

func TestRegistryCreate(t *testing.T) {
	r := NewRegistry(testKanji, 0)

	lobbyID, playerID, s := r.Create("Alice")
	if len(lobbyID) != lobbyIDLength {
		t.Errorf("lobby id %q length = %d, want %d", lobbyID, len(lobbyID), lobbyIDLength)
	}
	if len(playerID) != playerIDLength {
		t.Errorf("player id %q length = %d, want %d", playerID, len(playerID), playerIDLength)
	}
	if !s.IsLeader(playerID) {
		t.Error("creator should be the lobby leader")
	}

	got, err := r.Get(lobbyID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	r := NewRegistry(testKanji, 0)
	if _, err := r.Get("nonexistent"); !errors.Is(err, ErrLobbyNotFound) {
		t.Fatalf("err = %v, want ErrLobbyNotFound", err)
	}
}

func TestRegistryJoin(t *testing.T) {
	r := NewRegistry(testKanji, 0)
	lobbyID, creatorID, s := r.Create("Alice")

	playerID, err := r.Join(lobbyID, "Bob")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if playerID == creatorID {
		t.Error("joiner must get a distinct player id")
	}
	if s.IsLeader(playerID) {
		t.Error("joiner must not become leader")
	}
	if got := len(s.Players()); got != 2 {
		t.Errorf("roster len = %d, want 2", got)
	}

	if _, err := r.Join("nonexistent", "Carol"); !errors.Is(err, ErrLobbyNotFound) {
		t.Fatalf("join unknown lobby err = %v, want ErrLobbyNotFound", err)
	}
}

func TestRegistryIDsAreAlphanumeric(t *testing.T) {
	r := NewRegistry(testKanji, 0)
	lobbyID, playerID, _ := r.Create("Alice")
	for _, id := range []string{lobbyID, playerID} {
		for _, c := range id {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
				t.Fatalf("id %q contains non-alphanumeric %q", id, c)
			}
		}
	}
}

func TestRegistrySweepEvictsIdleLobbies(t *testing.T) {
	r := NewRegistry(testKanji, time.Minute)
	lobbyID, _, _ := r.Create("Alice")

	if n := r.Sweep(time.Now()); n != 0 {
		t.Fatalf("fresh lobby evicted: %d", n)
	}
	if n := r.Sweep(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}
	if _, err := r.Get(lobbyID); !errors.Is(err, ErrLobbyNotFound) {
		t.Fatalf("evicted lobby still resolvable, err = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestRegistrySweepDisabled(t *testing.T) {
	r := NewRegistry(testKanji, 0)
	r.Create("Alice")
	if n := r.Sweep(time.Now().Add(24 * time.Hour)); n != 0 {
		t.Fatalf("eviction disabled but evicted %d", n)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryActivityDefersEviction(t *testing.T) {
	r := NewRegistry(testKanji, time.Minute)
	lobbyID, _, s := r.Create("Alice")

	// A poll counts as activity.
	_ = s.Info()
	if n := r.Sweep(time.Now().Add(30 * time.Second)); n != 0 {
		t.Fatalf("recently polled lobby evicted: %d", n)
	}
	if _, err := r.Get(lobbyID); err != nil {
		t.Fatal(err)
	}
}
