// internal/httpserver/db.go
//
// SQLite persistence for the account and history subsystem.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, FKs).
//   - Idempotent schema migrations, applied inline and recorded in
//     _migrations.
//   - Best-effort event log of lobby activity (creations, joins, starts,
//     correct guesses). Live-game state never reads from here.

package httpserver

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Event kinds stored in lobby_events.kind.
const (
	eventLobbyCreated = "lobby_created"
	eventPlayerJoined = "player_joined"
	eventGameStarted  = "game_started"
	eventGoodGuess    = "good_guess"
)

// OpenDB opens (and creates if missing) a SQLite database file, ensuring the
// parent directory exists and WAL journaling + foreign keys are on.
func OpenDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrations are applied in order and recorded by name; re-running is a no-op.
var migrations = []struct {
	name string
	stmt string
}{
	{
		name: "001_users",
		stmt: `CREATE TABLE IF NOT EXISTS users (
			id                 TEXT PRIMARY KEY,
			username           TEXT NOT NULL UNIQUE,
			password_hash      TEXT NOT NULL,
			created_at         TEXT NOT NULL,
			last_login         TEXT,
			total_games_played INTEGER NOT NULL DEFAULT 0
		);`,
	},
	{
		name: "002_lobby_events",
		stmt: `CREATE TABLE IF NOT EXISTS lobby_events (
			id         TEXT PRIMARY KEY,
			lobby_id   TEXT NOT NULL,
			player_id  TEXT NOT NULL,
			kind       TEXT NOT NULL,
			word       TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_lobby_events_lobby ON lobby_events (lobby_id);`,
	},
}

// Migrate applies the schema migrations above.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	for _, m := range migrations {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, m.name).Scan(&done)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("apply %s: %w", m.name, err)
		}
		if _, err := db.Exec(`INSERT INTO _migrations (name) VALUES (?)`, m.name); err != nil {
			return fmt.Errorf("record %s: %w", m.name, err)
		}
		log.Info().Str("migration", m.name).Msg("applied")
	}
	return nil
}

// recordEvent appends one row to the lobby event log. Failures are logged and
// swallowed; history must never fail a live-game request.
func (s *Server) recordEvent(kind, lobbyID, playerID, word string) {
	if s.db == nil {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO lobby_events (id, lobby_id, player_id, kind, word, created_at)
		 VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), lobbyID, playerID, kind, nullable(word), now)
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("lobby", lobbyID).Msg("record event")
	}
}

// bumpGamesPlayed increments a signed-in user's lifetime game counter.
func (s *Server) bumpGamesPlayed(userID string) error {
	_, err := s.db.Exec(`UPDATE users SET total_games_played = total_games_played + 1 WHERE id=?`, userID)
	return err
}

// nullable maps "" onto SQL NULL.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
