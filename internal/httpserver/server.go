// internal/httpserver/server.go
//
// HTTP wiring for the kanji guesser backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/corpus".
//   - Lobby endpoints: create/join, info, settings, start, players.
//   - Game endpoints: current kanji, new kanji, word check.
//   - Auth + profile endpoints live in auth.go; QR join codes in qr.go.
//
// Notes:
//   - The live-game handlers are stateless glue: they resolve a lobby through
//     the registry and call one session operation. All consistency guarantees
//     live in the lobby package.
//   - CORS is origin-aware and credentials-enabled (so auth cookies work).
//   - History writes to the database are best effort and never fail a
//     live-game request.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/kanjiguesser/go-server/internal/corpus"
	"github.com/kanjiguesser/go-server/internal/game"
	"github.com/kanjiguesser/go-server/internal/lobby"
)

// Options carries the knobs main resolves from flags and environment.
type Options struct {
	ClientOrigin  string // CORS origin; defaults to http://localhost:5173
	JWTSecret     string
	CookieName    string
	SecureCookies bool
}

// Server bundles router, lobby registry, corpus, and DB handle.
type Server struct {
	r      *chi.Mux
	reg    *lobby.Registry
	corpus *corpus.Corpus
	db     *sql.DB
	opts   Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(reg *lobby.Registry, c *corpus.Corpus, db *sql.DB, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
	}
	if opts.CookieName == "" {
		opts.CookieName = "kanji_token"
	}
	s := &Server{r: chi.NewRouter(), reg: reg, corpus: c, db: db, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"kanji-guesser","endpoints":["/health","POST /lobby/create","POST /lobby/join/{lobbyID}","GET /kanji/{lobbyID}","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/corpus", func(w http.ResponseWriter, r *http.Request) {
		words, kanji := s.corpus.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"words": words, "kanji": kanji})
	})

	// Lobby lifecycle — OPTIONAL AUTH (guests can play; stats recorded for
	// signed-in users)
	s.r.With(s.withOptionalAuth()).Post("/lobby/create", s.handleCreateLobby)
	s.r.Post("/lobby/join/{lobbyID}", s.handleJoinLobby)
	s.r.Get("/lobby/{lobbyID}/info", s.handleLobbyInfo)
	s.r.Post("/lobby/{lobbyID}/settings", s.handleUpdateSettings)
	s.r.With(s.withOptionalAuth()).Post("/lobby/{lobbyID}/start", s.handleStartGame)
	s.r.Get("/lobby/{lobbyID}/players", s.handlePlayers)
	s.r.Get("/lobby/{lobbyID}/player/{playerID}", s.handlePlayer)
	s.r.Get("/lobby/{lobbyID}/qr", s.handleJoinQR)

	// Live game
	s.r.Get("/kanji/{lobbyID}", s.handleGetKanji)
	s.r.Post("/new_kanji/{lobbyID}", s.handleNewKanji)
	s.r.Post("/check_word/{lobbyID}", s.handleCheckWord)

	// Auth + profile/stats
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ LOBBY --------------------------------------

// joinReq is the payload for POST /lobby/create and /lobby/join/{lobbyID}.
type joinReq struct {
	PlayerName string `json:"player_name"`
}

// joinRes answers both create and join.
type joinRes struct {
	Message  string `json:"message"`
	LobbyID  string `json:"lobby_id"`
	PlayerID string `json:"player_id"`
}

// handleCreateLobby makes a new lobby with the caller as leader.
func (s *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	lobbyID, playerID, _ := s.reg.Create(req.PlayerName)
	s.recordEvent(eventLobbyCreated, lobbyID, playerID, "")
	log.Info().Str("lobby", lobbyID).Str("player", playerID).Msg("lobby created")
	_ = json.NewEncoder(w).Encode(joinRes{
		Message:  "Lobby created successfully!",
		LobbyID:  lobbyID,
		PlayerID: playerID,
	})
}

// handleJoinLobby adds a player to an existing lobby.
func (s *Server) handleJoinLobby(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	lobbyID := chi.URLParam(r, "lobbyID")
	playerID, err := s.reg.Join(lobbyID, req.PlayerName)
	if err != nil {
		writeErr(w, err)
		return
	}
	s.recordEvent(eventPlayerJoined, lobbyID, playerID, "")
	_ = json.NewEncoder(w).Encode(joinRes{
		Message:  "Joined lobby successfully!",
		LobbyID:  lobbyID,
		PlayerID: playerID,
	})
}

// handleLobbyInfo returns a consistent snapshot for polling clients.
func (s *Server) handleLobbyInfo(w http.ResponseWriter, r *http.Request) {
	sess, err := s.reg.Get(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.Info())
}

// settingsReq is the payload for POST /lobby/{lobbyID}/settings.
type settingsReq struct {
	PlayerID string         `json:"player_id"`
	Settings lobby.Settings `json:"settings"`
}

// handleUpdateSettings replaces the lobby settings. Leader only.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.reg.Get(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := sess.UpdateSettings(req.PlayerID, req.Settings); err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Settings updated successfully"})
}

// startReq is the payload for POST /lobby/{lobbyID}/start.
type startReq struct {
	PlayerID string `json:"player_id"`
}

// handleStartGame flips the lobby into the Playing phase. Leader only, only
// from the Lobby phase.
func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	lobbyID := chi.URLParam(r, "lobbyID")
	sess, err := s.reg.Get(lobbyID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := sess.StartGame(req.PlayerID); err != nil {
		writeErr(w, err)
		return
	}
	s.recordEvent(eventGameStarted, lobbyID, req.PlayerID, "")
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		if err := s.bumpGamesPlayed(me.ID); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump games played")
		}
	}
	log.Info().Str("lobby", lobbyID).Msg("game started")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Game started successfully"})
}

// playersRes wraps the roster for GET /lobby/{lobbyID}/players.
type playersRes struct {
	Players []lobby.Player `json:"players"`
}

// handlePlayers returns the full roster in join order.
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	sess, err := s.reg.Get(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(playersRes{Players: sess.Players()})
}

// handlePlayer returns a single roster entry.
func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	sess, err := s.reg.Get(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := sess.Player(chi.URLParam(r, "playerID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(p)
}

// ------------------------------ GAME ---------------------------------------

// kanjiRes is the prompt payload.
type kanjiRes struct {
	Kanji string `json:"kanji"`
}

// handleGetKanji returns the current prompt, generating one if the lobby has
// none yet.
func (s *Server) handleGetKanji(w http.ResponseWriter, r *http.Request) {
	sess, err := s.reg.Get(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	k, ok := sess.CurrentKanji()
	if !ok {
		k = sess.NewKanji()
	}
	_ = json.NewEncoder(w).Encode(kanjiRes{Kanji: k})
}

// handleNewKanji always rotates the prompt.
func (s *Server) handleNewKanji(w http.ResponseWriter, r *http.Request) {
	sess, err := s.reg.Get(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(kanjiRes{Kanji: sess.NewKanji()})
}

// checkWordReq is the payload for POST /check_word/{lobbyID}.
type checkWordReq struct {
	Word     string `json:"word"`
	Kanji    string `json:"kanji"`
	PlayerID string `json:"player_id"`
}

// checkWordRes reports the verdict, the submitter's score, and — on a correct
// guess — the next prompt.
type checkWordRes struct {
	Message string `json:"message"`
	Score   int    `json:"score"`
	Kanji   string `json:"kanji,omitempty"`
}

// handleCheckWord judges a guess. Only a correct guess has side effects: the
// submitter scores a point and the lobby gets a fresh prompt.
func (s *Server) handleCheckWord(w http.ResponseWriter, r *http.Request) {
	var req checkWordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	lobbyID := chi.URLParam(r, "lobbyID")
	sess, err := s.reg.Get(lobbyID)
	if err != nil {
		writeErr(w, err)
		return
	}

	verdict := game.Judge(req.Word, req.Kanji, s.corpus)

	var nextKanji string
	if verdict.Correct() {
		if _, err := sess.IncrementScore(req.PlayerID); err != nil {
			writeErr(w, err)
			return
		}
		nextKanji = sess.NewKanji()
		s.recordEvent(eventGoodGuess, lobbyID, req.PlayerID, req.Word)
	}

	score, err := sess.PlayerScore(req.PlayerID)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(checkWordRes{
		Message: verdict.Message(),
		Score:   score,
		Kanji:   nextKanji,
	})
}

// ------------------------------ errors -------------------------------------

// writeErr maps lobby errors onto HTTP statuses and a JSON error body.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lobby.ErrLobbyNotFound), errors.Is(err, lobby.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lobby.ErrNotLeader):
		status = http.StatusUnauthorized
	case errors.Is(err, lobby.ErrWrongPhase):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
