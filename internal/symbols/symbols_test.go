package symbols

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"animals", "emoticons", "fruit"}, r.Themes())
	for name, n := range r.Sizes() {
		assert.GreaterOrEqual(t, n, 20, name)
	}

	pool, err := r.Pool("")
	require.NoError(t, err)
	assert.Contains(t, pool, "emoticon-happy")
	assert.NotContains(t, pool, "# Material Community Icons emoticons (default theme)")
}

func TestPoolIsACopy(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	p, err := r.Pool(DefaultTheme)
	require.NoError(t, err)
	p[0] = "changed"

	again, err := r.Pool(DefaultTheme)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again[0])
}

func TestPoolUnknownTheme(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	_, err = r.Pool("planets")
	assert.ErrorIs(t, err, ErrUnknownTheme)
}

func TestLoadCustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.txt")
	require.NoError(t, os.WriteFile(path, []byte("# flags\nred\n\n  blue \ngreen\n"), 0o644))

	r, err := Load(path)
	require.NoError(t, err)

	pool, err := r.Pool(CustomTheme)
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue", "green"}, pool)
	assert.Contains(t, r.Themes(), CustomTheme)
}

func TestLoadCustomFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0o644))
	_, err = Load(empty)
	assert.Error(t, err)
}
