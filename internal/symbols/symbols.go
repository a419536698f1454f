// apps/go-server/internal/symbols/symbols.go
//
// Symbol palettes ("themes") for the game engine.
//
// Responsibilities:
//   - Load the embedded themes from the assets package.
//   - Optionally load one extra theme, "custom", from a file.
//   - Supply Pool, Themes and Sizes lookups.
//
// Initialization behavior (Init):
//   1. All embedded themes are loaded.
//   2. If a custom file path is given it is read (one symbol per line,
//      '#' comments) and registered as "custom".
//
// Init runs once (sync.Once); later calls return the first result.

package symbols

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"sync"

	"github.com/robalobadob/memory/apps/go-server/assets"
)

// DefaultTheme is used when a caller does not name a theme.
const DefaultTheme = "emoticons"

// CustomTheme is the name given to a file-provided theme.
const CustomTheme = "custom"

// ErrUnknownTheme is returned by Pool for an unregistered name.
var ErrUnknownTheme = errors.New("unknown theme")

// Registry maps theme names to symbol lists.
type Registry struct {
	themes map[string][]string
}

var (
	initOnce   sync.Once
	defaultReg *Registry
	initialErr error
)

// Init loads the process-wide registry exactly once.
func Init(customFile string) error {
	initOnce.Do(func() {
		defaultReg, initialErr = Load(customFile)
	})
	return initialErr
}

// Load builds a registry from the embedded themes plus an optional file.
func Load(customFile string) (*Registry, error) {
	names, err := assets.ThemeNames()
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	r := &Registry{themes: make(map[string][]string, len(names)+1)}
	for _, n := range names {
		list, err := assets.Theme(n)
		if err != nil {
			return nil, fmt.Errorf("load theme %s: %w", n, err)
		}
		r.themes[n] = list
	}

	if customFile != "" {
		list, err := readSymbolFile(customFile)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", customFile, err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("symbols: %s is empty", customFile)
		}
		r.themes[CustomTheme] = list
	}

	if len(r.themes[DefaultTheme]) == 0 {
		return nil, errors.New("symbols: default theme is empty")
	}
	return r, nil
}

// readSymbolFile loads one symbol per line from a file.
func readSymbolFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadLines(f)
}

// Pool returns a copy of the symbols of theme; "" selects DefaultTheme.
func (r *Registry) Pool(theme string) ([]string, error) {
	if theme == "" {
		theme = DefaultTheme
	}
	list, ok := r.themes[theme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}
	return slices.Clone(list), nil
}

// Themes returns the registered theme names, sorted.
func (r *Registry) Themes() []string {
	out := make([]string, 0, len(r.themes))
	for n := range r.themes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Sizes returns the number of symbols per theme.
func (r *Registry) Sizes() map[string]int {
	out := make(map[string]int, len(r.themes))
	for n, list := range r.themes {
		out[n] = len(list)
	}
	return out
}

// Default returns the registry loaded by Init, or nil before Init.
func Default() *Registry { return defaultReg }
