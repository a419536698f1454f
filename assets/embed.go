// Package assets embeds the built-in symbol themes.
package assets

import (
	"bufio"
	"embed"
	"io"
	"path"
	"sort"
	"strings"
)

//go:embed themes/*.txt
var FS embed.FS

// ThemeNames lists the embedded themes (file names without extension).
func ThemeNames() ([]string, error) {
	entries, err := FS.ReadDir("themes")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			out = append(out, strings.TrimSuffix(e.Name(), ".txt"))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Theme returns the symbols of an embedded theme.
func Theme(name string) ([]string, error) {
	f, err := FS.Open(path.Join("themes", name+".txt"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines returns the trimmed, non-empty, non-comment lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
