// Package library finds story scripts in the stories directory
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoStories = errors.New("no stories found")

// Entry is one discoverable story file
type Entry struct {
	Name string // file name shown in menus
	Path string
	Size int64
}

// Library scans a directory, skipping hidden files and ignore-pattern matches
type Library struct {
	dir     string
	ignore  []string
	entries []Entry
	log     *slog.Logger
}

// New creates a library rooted at dir. Invalid patterns are rejected up front.
func New(dir string, ignore []string, log *slog.Logger) (*Library, error) {
	for _, p := range ignore {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Library{dir: dir, ignore: ignore, log: log}, nil
}

// Dir returns the scanned directory
func (l *Library) Dir() string { return l.dir }

// Discover rescans the directory. Entries are sorted by name.
func (l *Library) Discover() ([]Entry, error) {
	dirEntries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %q does not exist", ErrNoStories, l.dir)
		}
		return nil, fmt.Errorf("read stories directory: %w", err)
	}

	l.entries = l.entries[:0]
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			l.log.Debug("skipping hidden file", "file", name)
			continue
		}
		if l.Ignored(name) {
			l.log.Debug("skipping ignored file", "file", name)
			continue
		}

		e := Entry{Name: name, Path: filepath.Join(l.dir, name)}
		if info, err := de.Info(); err == nil {
			e.Size = info.Size()
		}
		l.entries = append(l.entries, e)
	}

	sort.Slice(l.entries, func(i, j int) bool { return l.entries[i].Name < l.entries[j].Name })
	l.log.Debug("discovered stories", "dir", l.dir, "count", len(l.entries))

	if len(l.entries) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoStories, l.dir)
	}
	return l.Entries(), nil
}

// Entries returns a copy of the last discovery result
func (l *Library) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Ignored reports whether name matches any ignore pattern
func (l *Library) Ignored(name string) bool {
	for _, p := range l.ignore {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Names returns the menu labels of the discovered entries
func (l *Library) Names() []string {
	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.Name
	}
	return names
}

// Load reads a story script
func Load(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load story: %w", err)
	}
	return string(b), nil
}
