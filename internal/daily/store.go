package daily

import (
	"context"
	"database/sql"
)

// DefaultLeaderboardLimit applies when a caller passes a non-positive limit.
const DefaultLeaderboardLimit = 20

// Result is one user's finished daily deal.
type Result struct {
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Pairs  int    `json:"pairs"`
	Moves  int    `json:"moves"`
}

// Store persists daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records r; a second result for the same user and date is
// ignored. It reports whether a row was written.
func (s *Store) InsertResult(ctx context.Context, r Result) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, pairs, moves) VALUES(?,?,?,?)`,
		r.UserID, r.Date, r.Pairs, r.Moves,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// LBRow is one leaderboard line.
type LBRow struct {
	Username string `json:"username"`
	Moves    int    `json:"moves"`
}

// Leaderboard returns the best results for date: fewest moves first, ties
// broken by who finished first.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.username, d.moves
		   FROM daily_results d JOIN users u ON u.id = d.user_id
		  WHERE d.date=?
		  ORDER BY d.moves ASC, d.created_at ASC
		  LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Username, &r.Moves); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
