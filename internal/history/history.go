// apps/go-server/internal/history/history.go
//
// Game history and per-user stats.
// Only bookkeeping is stored (who played, board size, moves, outcome); the
// board itself lives in memory and is never persisted.
//
// Rows are owned either by a user (user_id) or by an anonymous browser
// cookie (anonymous_id); Claim moves anonymous rows to an account.

package history

import (
	"context"
	"database/sql"
	"time"
)

const (
	StatusPlaying  = "playing"
	StatusComplete = "complete"

	ModeNormal = "normal"
	ModeDaily  = "daily"
)

// Owner identifies who a game row belongs to. Exactly one field is set.
type Owner struct {
	UserID      string
	AnonymousID string
}

func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return `user_id=?`, o.UserID
	}
	return `anonymous_id=?`, o.AnonymousID
}

// Game is one history row.
type Game struct {
	ID         string `json:"id"`
	Mode       string `json:"mode"`
	Theme      string `json:"theme"`
	Pairs      int    `json:"pairs"`
	Moves      int    `json:"moves"`
	Status     string `json:"status"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// Store reads and writes the games table and user counters.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// Start records a freshly dealt game and counts it as played for users.
func (s *Store) Start(ctx context.Context, o Owner, g Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var user, anon any
	if o.UserID != "" {
		user = o.UserID
	} else {
		anon = o.AnonymousID
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (id, user_id, anonymous_id, mode, theme, pairs, moves, status, started_at)
		 VALUES (?,?,?,?,?,?,0,?,?)`,
		g.ID, user, anon, g.Mode, g.Theme, g.Pairs, StatusPlaying, now()); err != nil {
		return err
	}
	if o.UserID != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET games_played = games_played + 1 WHERE id=?`, o.UserID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Restart resets a row after the board was dealt again.
func (s *Store) Restart(ctx context.Context, o Owner, id string) error {
	clause, arg := o.clause()
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET moves=0, status=?, started_at=?, finished_at=NULL WHERE id=? AND `+clause,
		StatusPlaying, now(), id, arg)
	return err
}

// Progress stores the current move count of a game.
func (s *Store) Progress(ctx context.Context, o Owner, id string, moves int) error {
	clause, arg := o.clause()
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET moves=? WHERE id=? AND status=? AND `+clause,
		moves, id, StatusPlaying, arg)
	return err
}

// Finish marks a game complete and, for users, bumps games_completed and
// best_moves in the same transaction. Finishing twice has no effect.
// It reports whether the row transitioned.
func (s *Store) Finish(ctx context.Context, o Owner, id string, moves int) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	clause, arg := o.clause()
	res, err := tx.ExecContext(ctx,
		`UPDATE games SET moves=?, status=?, finished_at=? WHERE id=? AND status=? AND `+clause,
		moves, StatusComplete, now(), id, StatusPlaying, arg)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil || n == 0 {
		return false, err
	}
	if o.UserID != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users
			    SET games_completed = games_completed + 1,
			        best_moves = CASE WHEN best_moves IS NULL OR best_moves > ? THEN ? ELSE best_moves END
			  WHERE id=?`, moves, moves, o.UserID); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

// Claim transfers anonymous games to a user account after auth.
func (s *Store) Claim(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

// Recent lists a user's latest games, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, theme, pairs, moves, status, started_at, COALESCE(finished_at,'')
		   FROM games WHERE user_id=? ORDER BY started_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Mode, &g.Theme, &g.Pairs, &g.Moves, &g.Status, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
