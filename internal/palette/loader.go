package palette

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const ext = ".palette"

// Loader finds palettes by name.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a new Loader with standard paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "pixelmaker", "palettes"),
		SystemDir: "/usr/share/pixelmaker/palettes",
	}
}

// Load returns the palette called name. Order:
// 1. name is a path to an existing file.
// 2. Embedded palettes.
// 3. ConfigDir.
// 4. SystemDir.
//
// An empty name yields Default.
func (l *Loader) Load(name string) (*Palette, error) {
	if name == "" || name == Default().Name {
		return Default(), nil
	}

	if _, err := os.Stat(name); err == nil {
		return l.parseFile(name)
	}

	filename := name
	if !strings.HasSuffix(filename, ext) {
		filename += ext
	}

	if f, err := Embedded.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return parseNamed(f, strings.TrimSuffix(filename, ext))
	}

	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return l.parseFile(path)
		}
	}

	return nil, fmt.Errorf("palette '%s' not found", name)
}

func (l *Loader) parseFile(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseNamed(f, strings.TrimSuffix(filepath.Base(path), ext))
}

// parseNamed parses a palette, naming it fallback if the file has no Name.
func parseNamed(r io.Reader, fallback string) (*Palette, error) {
	p, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = fallback
	}
	return p, nil
}

// List returns the names of every palette the loader can find.
func (l *Loader) List() []string {
	seen := map[string]bool{Default().Name: true}
	if entries, err := fs.ReadDir(Embedded, "defaults"); err == nil {
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ext) {
				seen[strings.TrimSuffix(e.Name(), ext)] = true
			}
		}
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
				seen[strings.TrimSuffix(e.Name(), ext)] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
