// Package daily derives the shared "deal of the day": every player gets the
// same board for a given date.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic PCG seed for a date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) [2]uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return [2]uint64{
		binary.BigEndian.Uint64(sum[:8]),
		binary.BigEndian.Uint64(sum[8:16]),
	}
}

// GameID is the session ID of a user's daily game.
func GameID(userID, date string) string {
	return "daily-" + date + "-" + userID
}
