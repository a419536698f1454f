package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory/apps/go-server/internal/database"
)

func newUsers(t *testing.T) *Users {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewUsers(db)
}

func TestValidateSignup(t *testing.T) {
	cases := []struct {
		name, user, pw string
		ok             bool
	}{
		{"valid", "player_1", "password1", true},
		{"short name", "ab", "password1", false},
		{"long name", "abcdefghijklmnopqrstuvwxy", "password1", false},
		{"bad chars", "bad name", "password1", false},
		{"short password", "player", "short", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSignup(tc.user, tc.pw)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestUsersCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)

	u, err := users.Create(ctx, "  alice ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	_, err = users.Create(ctx, "ALICE", "another-pass")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := users.Authenticate(ctx, "Alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Nil(t, got.BestMoves)
	assert.Equal(t, 0, got.GamesPlayed)

	_, err = users.Authenticate(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = users.FindByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokens(t *testing.T) {
	tok := Tokens{Secret: []byte("test-secret"), TTL: time.Hour}

	s, exp, err := tok.Sign("id-1", "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := tok.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, Claims{ID: "id-1", Username: "alice"}, c)

	_, err = Tokens{Secret: []byte("other")}.Parse(s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := Tokens{Secret: tok.Secret, TTL: -time.Minute}.Sign("id-1", "alice")
	require.NoError(t, err)
	_, err = tok.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCookies(t *testing.T) {
	c := Cookies{Name: "memory_token"}

	rec := httptest.NewRecorder()
	c.Set(rec, "abc", time.Now().Add(time.Hour))
	set := rec.Result().Cookies()
	require.Len(t, set, 1)
	assert.Equal(t, "abc", set[0].Value)
	assert.Equal(t, http.SameSiteLaxMode, set[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(set[0])
	assert.Equal(t, "abc", c.Token(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer xyz")
	assert.Equal(t, "xyz", c.Token(req))

	assert.Empty(t, c.Token(httptest.NewRequest(http.MethodGet, "/", nil)))

	rec = httptest.NewRecorder()
	Cookies{Name: "memory_token", Secure: true}.Clear(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].Secure)
	assert.Equal(t, http.SameSiteNoneMode, cleared[0].SameSite)
	assert.Equal(t, -1, cleared[0].MaxAge)
}
