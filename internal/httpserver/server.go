// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the Memory game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, logging).
//   - Public endpoints: "/", "/health", "/themes".
//   - Game endpoints (optional auth): POST /game/new, GET /game/{id},
//     POST /game/flip, POST /game/{id}/restart.
//   - Daily deal endpoints: mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Handlers only forward taps and restarts into game.Session and render
//     its state; every game rule lives in the game package.
//   - Face-down symbols are never sent to the client.
//   - History/stat writes are best effort: failures are logged, the tap
//     still succeeds.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/apps/go-server/internal/auth"
	"github.com/robalobadob/memory/apps/go-server/internal/config"
	"github.com/robalobadob/memory/apps/go-server/internal/game"
	"github.com/robalobadob/memory/apps/go-server/internal/history"
	"github.com/robalobadob/memory/apps/go-server/internal/store"
	"github.com/robalobadob/memory/apps/go-server/internal/symbols"
)

var validate = validator.New()

// Server bundles router, live session store, DB-backed stores and settings.
type Server struct {
	r         *chi.Mux
	cfg       *config.Config
	store     store.Store
	themes    *symbols.Registry
	users     *auth.Users
	history   *history.Store
	tokens    auth.Tokens
	cookies   auth.Cookies
	scheduler game.Scheduler
	now       func() time.Time
	db        *sql.DB
	daily     *dailyServer
}

// Option customizes a Server.
type Option func(*Server)

// WithScheduler replaces the timer used for mismatch reveals.
func WithScheduler(sc game.Scheduler) Option {
	return func(s *Server) { s.scheduler = sc }
}

// WithClock replaces the wall clock used for daily deals.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, st store.Store, db *sql.DB, themes *symbols.Registry, opts ...Option) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		cfg:       cfg,
		store:     st,
		themes:    themes,
		users:     auth.NewUsers(db),
		history:   history.NewStore(db),
		tokens:    auth.Tokens{Secret: []byte(cfg.Auth.JWTSecret), TTL: cfg.Auth.JWTTTL()},
		cookies:   auth.Cookies{Name: cfg.Auth.CookieName, Secure: cfg.Server.Production},
		scheduler: game.TimeScheduler,
		now:       time.Now,
		db:        db,
	}
	for _, o := range opts {
		o(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                          // add X-Request-ID
	s.r.Use(chimw.RealIP)                             // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                            // one zerolog line per request
	s.r.Use(chimw.Recoverer)                          // recover from panics
	s.r.Use(chimw.Timeout(cfg.Server.HandlerTimeout)) // bound handler time
	s.r.Use(jsonContentType)                          // default JSON responses
	s.r.Use(cors(cfg.Server.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"memory-go","endpoints":["/health","/themes","POST /game/new","POST /game/flip","GET /game/{id}","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/themes", s.handleThemes)

	// Game endpoints — OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/flip", s.handleFlip)
		r.Get("/game/{id}", s.handleGetGame)
		r.Post("/game/{id}/restart", s.handleRestart)
	})

	// Daily deal — accounts only for play; leaderboard is public
	s.mountDaily(s.r)

	// Auth + profile/stats
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ VIEWS --------------------------------------

const (
	cardDown    = "down"
	cardUp      = "up"
	cardMatched = "matched"
)

// cardView is the client-facing card. Symbol is only set while face up.
type cardView struct {
	ID     int    `json:"id"`
	State  string `json:"state"`
	Symbol string `json:"symbol,omitempty"`
}

// gameView is the client-facing game state.
type gameView struct {
	GameID     string      `json:"gameId"`
	Theme      string      `json:"theme"`
	Pairs      int         `json:"pairs"`
	Moves      int         `json:"moves"`
	Matched    int         `json:"matched"`
	Locked     bool        `json:"locked"`
	LastResult game.Result `json:"lastResult"`
	Complete   bool        `json:"complete"`
	Cards      []cardView  `json:"cards"`
}

func buildView(sess *game.Session, st game.State) gameView {
	cards := make([]cardView, len(st.Cards))
	for i, c := range st.Cards {
		cv := cardView{ID: c.ID, State: cardDown}
		switch {
		case c.IsMatched:
			cv.State, cv.Symbol = cardMatched, c.Symbol
		case c.IsFlipped:
			cv.State, cv.Symbol = cardUp, c.Symbol
		}
		cards[i] = cv
	}
	return gameView{
		GameID:     sess.ID(),
		Theme:      sess.Theme(),
		Pairs:      sess.Pairs(),
		Moves:      st.Moves,
		Matched:    st.Matched(),
		Locked:     st.Locked,
		LastResult: st.LastResult,
		Complete:   st.IsComplete(),
		Cards:      cards,
	}
}

// ------------------------------ GAME ---------------------------------------

// newGameReq is the payload for POST /game/new; zero values pick defaults.
type newGameReq struct {
	Pairs int    `json:"pairs" validate:"gte=0"`
	Theme string `json:"theme" validate:"omitempty,max=64"`
}

// flipReq is the payload for POST /game/flip.
type flipReq struct {
	GameID string `json:"gameId" validate:"required"`
	CardID *int   `json:"cardId" validate:"required"`
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	type themeRow struct {
		Name    string `json:"name"`
		Symbols int    `json:"symbols"`
	}
	sizes := s.themes.Sizes()
	out := []themeRow{}
	for _, n := range s.themes.Themes() {
		out = append(out, themeRow{Name: n, Symbols: sizes[n]})
	}
	writeJSON(w, http.StatusOK, map[string]any{"default": s.cfg.Game.Theme, "themes": out})
}

// handleNewGame deals a new board, stores the session and records a
// history row for the user or the anonymous cookie.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Pairs == 0 {
		req.Pairs = s.cfg.Game.Pairs
	}
	if req.Pairs > s.cfg.Game.MaxPairs {
		writeError(w, http.StatusBadRequest, "too_many_pairs")
		return
	}
	if req.Theme == "" {
		req.Theme = s.cfg.Game.Theme
	}

	pool, err := s.themes.Pool(req.Theme)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_theme")
		return
	}
	sess, err := game.NewSession(game.Options{
		Theme:       req.Theme,
		Pool:        pool,
		Pairs:       req.Pairs,
		RevealDelay: s.cfg.Game.RevealDelay,
		Scheduler:   s.scheduler,
	})
	if err != nil {
		if errors.Is(err, game.ErrPoolTooSmall) || errors.Is(err, game.ErrInvalidPairCount) {
			writeError(w, http.StatusBadRequest, "theme_too_small")
			return
		}
		log.Error().Err(err).Msg("new session")
		writeError(w, http.StatusInternalServerError, "deal_failed")
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	if err := s.history.Start(r.Context(), s.owner(w, r), history.Game{
		ID: sess.ID(), Mode: history.ModeNormal, Theme: req.Theme, Pairs: req.Pairs,
	}); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID()).Msg("insert game row")
	}
	log.Debug().Str("gameId", sess.ID()).Int("pairs", req.Pairs).Str("theme", req.Theme).Msg("game dealt")

	writeJSON(w, http.StatusOK, buildView(sess, sess.State()))
}

// handleGetGame returns the current view; clients poll it while locked.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, buildView(sess, sess.State()))
}

// handleFlip forwards a tap into the session and records progress when a
// pair was evaluated.
func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	var req flipReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	before := sess.State().Moves
	st := sess.Flip(*req.CardID)
	if st.Moves != before {
		s.recordProgress(r, w, sess.ID(), st)
	}
	writeJSON(w, http.StatusOK, buildView(sess, st))
}

// recordProgress persists the move count, or the finish once complete.
func (s *Server) recordProgress(r *http.Request, w http.ResponseWriter, id string, st game.State) {
	o := s.owner(w, r)
	if !st.IsComplete() {
		if err := s.history.Progress(r.Context(), o, id, st.Moves); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("update moves")
		}
		return
	}
	done, err := s.history.Finish(r.Context(), o, id, st.Moves)
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("finish game")
		return
	}
	if done {
		log.Info().Str("gameId", id).Int("moves", st.Moves).Msg("game complete")
	}
}

// handleRestart deals the session again (new-game button on the same board size).
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err := sess.Initialize(); err != nil {
		log.Error().Err(err).Str("gameId", sess.ID()).Msg("restart")
		writeError(w, http.StatusInternalServerError, "deal_failed")
		return
	}
	if err := s.history.Restart(r.Context(), s.owner(w, r), sess.ID()); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID()).Msg("restart game row")
	}
	writeJSON(w, http.StatusOK, buildView(sess, sess.State()))
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
