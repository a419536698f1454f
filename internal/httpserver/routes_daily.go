// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Deal" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's deal (auth)
//   - POST /daily/flip        → flip a card in today's deal (auth)
//   - GET  /daily/leaderboard → fewest-moves results for today (or ?date=)
//
// Every player gets the same board for a date (seed = HMAC(salt, date)).
// Each user can finish once per day (enforced by DB + in-memory session).
// Sessions are held in memory for active play and persisted to DB on completion.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/apps/go-server/internal/daily"
	"github.com/robalobadob/memory/apps/go-server/internal/game"
	"github.com/robalobadob/memory/apps/go-server/internal/history"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	sessions map[string]*game.Session // active sessions keyed by daily.GameID
	mu       sync.Mutex               // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		sessions: make(map[string]*game.Session),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Get("/leaderboard", dd.handleLeaderboard)
		r.With(s.requireAuth()).Post("/new", dd.handleNew)
		r.With(s.requireAuth()).Post("/flip", dd.handleFlip)
	})
}

// today returns the current date key.
func (d *dailyServer) today() string { return daily.DateKey(d.srv.now()) }

// dailyRes is returned by /daily/new and /daily/flip.
type dailyRes struct {
	Date     string    `json:"date"`
	Played   bool      `json:"played"`
	Recorded bool      `json:"recorded,omitempty"`
	Game     *gameView `json:"game,omitempty"`
}

// -----------------------------------------------------------------------------
// /daily/new

// handleNew creates or reuses today's session.
//   - If the user already has a DB row for today → Played=true, no game.
//   - Otherwise create/reuse an in-memory session and return its view.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	date := d.today()

	if played, err := d.store.AlreadyPlayed(r.Context(), me.ID, date); err != nil {
		log.Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	} else if played {
		writeJSON(w, http.StatusOK, dailyRes{Date: date, Played: true})
		return
	}

	id := daily.GameID(me.ID, date)
	sess, created, err := d.session(id)
	if err != nil {
		log.Error().Err(err).Msg("daily session")
		writeError(w, http.StatusInternalServerError, "deal_failed")
		return
	}
	if created {
		if err := d.srv.history.Start(r.Context(), history.Owner{UserID: me.ID}, history.Game{
			ID: id, Mode: history.ModeDaily, Theme: sess.Theme(), Pairs: sess.Pairs(),
		}); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("insert daily game row")
		}
	}

	view := buildView(sess, sess.State())
	writeJSON(w, http.StatusOK, dailyRes{Date: date, Game: &view})
}

// session returns the live session for id, dealing today's board if needed.
func (d *dailyServer) session(id string) (*game.Session, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if sess, ok := d.sessions[id]; ok {
		return sess, false, nil
	}
	sess, err := d.newSession(id)
	if err != nil {
		return nil, false, err
	}
	d.sessions[id] = sess
	return sess, true, nil
}

// newSession deals today's seeded board.
func (d *dailyServer) newSession(id string) (*game.Session, error) {
	cfg := d.srv.cfg
	pool, err := d.srv.themes.Pool(cfg.Game.Theme)
	if err != nil {
		return nil, err
	}
	seed := daily.Seed(d.srv.now(), cfg.Daily.Salt)
	return game.NewSession(game.Options{
		ID:          id,
		Theme:       cfg.Game.Theme,
		Pool:        pool,
		Pairs:       cfg.Daily.Pairs,
		RevealDelay: cfg.Game.RevealDelay,
		Scheduler:   d.srv.scheduler,
		Seed:        &seed,
	})
}

// -----------------------------------------------------------------------------
// /daily/flip

// dailyFlipReq is the request payload for /daily/flip.
type dailyFlipReq struct {
	CardID *int `json:"cardId" validate:"required"`
}

// handleFlip applies a tap to today's session and persists the result once
// the board is complete.
func (d *dailyServer) handleFlip(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)

	var req dailyFlipReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	date := d.today()
	id := daily.GameID(me.ID, date)
	d.mu.Lock()
	sess, ok := d.sessions[id]
	d.mu.Unlock()
	if !ok {
		writeError(w, http.StatusConflict, "no_session")
		return
	}

	before := sess.State().Moves
	st := sess.Flip(*req.CardID)
	res := dailyRes{Date: date}

	if st.Moves != before && st.IsComplete() {
		owner := history.Owner{UserID: me.ID}
		inserted, err := d.store.InsertResult(r.Context(), daily.Result{
			UserID: me.ID, Date: date, Pairs: sess.Pairs(), Moves: st.Moves,
		})
		if err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("insert daily result")
		}
		res.Recorded = inserted
		res.Played = true
		if _, err := d.srv.history.Finish(r.Context(), owner, id, st.Moves); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("finish daily game")
		}
		d.mu.Lock()
		delete(d.sessions, id)
		d.mu.Unlock()
	} else if st.Moves != before {
		if err := d.srv.history.Progress(r.Context(), history.Owner{UserID: me.ID}, id, st.Moves); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("update daily moves")
		}
	}

	view := buildView(sess, st)
	res.Game = &view
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = d.today()
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = daily.DefaultLeaderboardLimit
	}
	rows, err := d.store.Leaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
