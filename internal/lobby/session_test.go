package lobby

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

var testKanji = []string{"日", "本", "語", "水", "火"}

func newTestSession() *Session {
	return newSession("TEST01", testKanji, time.Now())
}

func TestFirstPlayerBecomesLeader(t *testing.T) {
	s := newTestSession()

	if isLeader := s.AddPlayer("player1", "Alice"); !isLeader {
		t.Fatal("first player should become leader")
	}
	if isLeader := s.AddPlayer("player2", "Bob"); isLeader {
		t.Fatal("second player should not become leader")
	}

	if !s.IsLeader("player1") {
		t.Error("IsLeader(player1) = false, want true")
	}
	if s.IsLeader("player2") {
		t.Error("IsLeader(player2) = true, want false")
	}
}

func TestIncrementScoreIsMonotonic(t *testing.T) {
	s := newTestSession()
	s.AddPlayer("p1", "Alice")

	if score, err := s.PlayerScore("p1"); err != nil || score != 0 {
		t.Fatalf("initial score = %d, %v; want 0, nil", score, err)
	}
	for i := 1; i <= 5; i++ {
		got, err := s.IncrementScore("p1")
		if err != nil {
			t.Fatalf("IncrementScore: %v", err)
		}
		if got != i {
			t.Fatalf("after %d increments score = %d", i, got)
		}
	}
}

func TestCurrentKanjiLifecycle(t *testing.T) {
	s := newTestSession()

	if _, ok := s.CurrentKanji(); ok {
		t.Fatal("fresh session should have no kanji")
	}

	k := s.NewKanji()
	if !contains(testKanji, k) {
		t.Fatalf("generated kanji %q not in list", k)
	}
	if got, ok := s.CurrentKanji(); !ok || got != k {
		t.Fatalf("CurrentKanji = %q, %v; want %q, true", got, ok, k)
	}

	// A second generation replaces the prompt.
	k2 := s.NewKanji()
	if got, _ := s.CurrentKanji(); got != k2 {
		t.Fatalf("CurrentKanji = %q after regeneration, want %q", got, k2)
	}
}

func TestStartGame(t *testing.T) {
	s := newTestSession()
	s.AddPlayer("leader", "Alice")
	s.AddPlayer("player", "Bob")

	if err := s.StartGame("player"); !errors.Is(err, ErrNotLeader) {
		t.Fatalf("non-leader start err = %v, want ErrNotLeader", err)
	}
	if err := s.StartGame("leader"); err != nil {
		t.Fatalf("leader start err = %v", err)
	}

	info := s.Info()
	if info.Status != StatusPlaying {
		t.Errorf("status = %q, want %q", info.Status, StatusPlaying)
	}
	// Status flip and first prompt are one atomic effect.
	if _, ok := s.CurrentKanji(); !ok {
		t.Error("started game should have a prompt")
	}

	if err := s.StartGame("leader"); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("second start err = %v, want ErrWrongPhase", err)
	}
}

func TestUpdateSettingsLeaderOnly(t *testing.T) {
	s := newTestSession()
	s.AddPlayer("leader", "Alice")
	s.AddPlayer("player", "Bob")

	before := s.Info().Settings
	limit := 60
	next := Settings{
		DifficultyLevels: []string{"N5", "N4"},
		TimeLimitSeconds: &limit,
		MaxPlayers:       10,
	}

	if err := s.UpdateSettings("player", next); !errors.Is(err, ErrNotLeader) {
		t.Fatalf("non-leader update err = %v, want ErrNotLeader", err)
	}
	after := s.Info().Settings
	if fmt.Sprint(after) != fmt.Sprint(before) {
		t.Fatalf("settings changed by rejected update: %+v -> %+v", before, after)
	}

	if err := s.UpdateSettings("leader", next); err != nil {
		t.Fatalf("leader update err = %v", err)
	}
	got := s.Info().Settings
	if got.MaxPlayers != 10 || len(got.DifficultyLevels) != 2 || *got.TimeLimitSeconds != 60 {
		t.Errorf("settings not replaced: %+v", got)
	}
}

func TestDefaultSettings(t *testing.T) {
	got := newTestSession().Info().Settings
	if len(got.DifficultyLevels) != 5 || got.DifficultyLevels[0] != "N1" {
		t.Errorf("difficulty levels = %v", got.DifficultyLevels)
	}
	if got.TimeLimitSeconds != nil {
		t.Errorf("time limit = %v, want nil", *got.TimeLimitSeconds)
	}
	if got.MaxPlayers != 4 {
		t.Errorf("max players = %d, want 4", got.MaxPlayers)
	}
}

func TestPlayersPreserveJoinOrder(t *testing.T) {
	s := newTestSession()
	s.AddPlayer("player1", "Alice")
	s.AddPlayer("player2", "Bob")

	players := s.Players()
	if len(players) != 2 {
		t.Fatalf("len = %d, want 2", len(players))
	}
	if players[0].ID != "player1" || players[0].Name != "Alice" {
		t.Errorf("players[0] = %+v", players[0])
	}
	if players[1].ID != "player2" || players[1].Name != "Bob" {
		t.Errorf("players[1] = %+v", players[1])
	}
	if players[0].Score != 0 || players[1].Score != 0 {
		t.Error("new players should start at score 0")
	}
}

func TestPlayerNotFound(t *testing.T) {
	s := newTestSession()

	if _, err := s.PlayerScore("nonexistent"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("PlayerScore err = %v, want ErrPlayerNotFound", err)
	}
	if _, err := s.PlayerName("nonexistent"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("PlayerName err = %v, want ErrPlayerNotFound", err)
	}
	if _, err := s.IncrementScore("nonexistent"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("IncrementScore err = %v, want ErrPlayerNotFound", err)
	}
}

func TestConcurrentAddPlayer(t *testing.T) {
	const n = 50
	s := newTestSession()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddPlayer(fmt.Sprintf("p%02d", i), fmt.Sprintf("Player %d", i))
		}(i)
	}
	wg.Wait()

	players := s.Players()
	if len(players) != n {
		t.Fatalf("roster len = %d, want %d", len(players), n)
	}
	leaders := 0
	for _, p := range players {
		if s.IsLeader(p.ID) {
			leaders++
		}
	}
	if leaders != 1 {
		t.Fatalf("leaders = %d, want exactly 1", leaders)
	}
	// The leader is whoever landed first in the roster.
	if !s.IsLeader(players[0].ID) {
		t.Error("first roster entry should be the leader")
	}
}

func TestInfoSnapshotIsACopy(t *testing.T) {
	s := newTestSession()
	s.AddPlayer("p1", "Alice")

	info := s.Info()
	info.Players[0].Score = 99

	if score, _ := s.PlayerScore("p1"); score != 0 {
		t.Fatal("mutating a snapshot must not affect the session")
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
