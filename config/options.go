// Package config loads and persists player options as TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/tales/story"
)

// DefaultPath is the options file looked up in the working directory
const DefaultPath = "options.toml"

// Options is the on-disk configuration
type Options struct {
	Story          StoryOptions   `toml:"story"`
	IgnorePatterns []string       `toml:"ignore_patterns"`
	Logging        LoggingOptions `toml:"logging"`
	Audio          AudioOptions   `toml:"audio"`
	Phrase         PhraseOptions  `toml:"phrase"`

	unknown []string
}

// StoryOptions controls playback
type StoryOptions struct {
	ScrollRate       ScrollRate        `toml:"scroll_rate"`
	DisplayUnit      story.DisplayUnit `toml:"display_unit"`
	StoriesDirectory string            `toml:"stories_directory"`
	// Single character shown while waiting for a key; empty disables it
	PromptWhenWait string `toml:"prompt_when_wait"`
}

// LoggingOptions mirrors logging.Options
type LoggingOptions struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	File      string `toml:"file"`
	AddSource bool   `toml:"add_source"`
}

// AudioOptions toggles the optional cue sounds
type AudioOptions struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
}

// PhraseOptions configures random_word_generator
type PhraseOptions struct {
	// URL template with {category}; empty uses the built-in word lists only
	Endpoint          string   `toml:"endpoint"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Timeout           Duration `toml:"timeout"`
}

// Duration is a time.Duration stored as "1.5s" style text
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in options
func Default() *Options {
	return &Options{
		Story: StoryOptions{
			ScrollRate:       OnePage(),
			DisplayUnit:      story.DisplayWord,
			StoriesDirectory: "stories",
			PromptWhenWait:   ">",
		},
		IgnorePatterns: []string{"*~", "#*#"},
		Logging: LoggingOptions{
			Level:  "info",
			Format: "text",
			File:   "tales.log",
		},
		Audio: AudioOptions{
			Enabled: false,
			Volume:  0.5,
		},
		Phrase: PhraseOptions{
			RequestsPerSecond: 1,
			Timeout:           Duration{3 * time.Second},
		},
	}
}

// Load reads options from path on top of the defaults.
// A missing file yields the defaults, which are written back best-effort.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		opts := Default()
		_ = Save(path, opts)
		return opts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}

	opts := Default()
	md, err := toml.Decode(string(data), opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, k := range md.Undecoded() {
		opts.unknown = append(opts.unknown, k.String())
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// Save writes opts to path, creating parent directories
func Save(path string, opts *Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(opts); err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate checks values TOML decoding cannot
func (o *Options) Validate() error {
	if o.Story.StoriesDirectory == "" {
		return errors.New("story.stories_directory must not be empty")
	}
	if n := utf8.RuneCountInString(o.Story.PromptWhenWait); n > 1 {
		return fmt.Errorf("story.prompt_when_wait must be a single character, got %q", o.Story.PromptWhenWait)
	}
	for _, p := range o.IgnorePatterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("ignore pattern %q: %w", p, err)
		}
	}
	if o.Audio.Volume < 0 || o.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume must be within [0, 1], got %g", o.Audio.Volume)
	}
	return nil
}

// UnknownKeys lists keys present in the file but not understood
func (o *Options) UnknownKeys() []string { return o.unknown }

// PromptRune returns the wait marker, if one is configured
func (o *Options) PromptRune() (rune, bool) {
	if o.Story.PromptWhenWait == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(o.Story.PromptWhenWait)
	return r, true
}

// ApplyEnv overrides story settings from TALES_* variables
func (o *Options) ApplyEnv() error {
	if v := os.Getenv("TALES_STORIES_DIR"); v != "" {
		o.Story.StoriesDirectory = v
	}
	if v := os.Getenv("TALES_SCROLL_RATE"); v != "" {
		r, err := ParseScrollRate(v)
		if err != nil {
			return err
		}
		o.Story.ScrollRate = r
	}
	if v := os.Getenv("TALES_DISPLAY_UNIT"); v != "" {
		d, err := story.ParseDisplayUnit(v)
		if err != nil {
			return err
		}
		o.Story.DisplayUnit = d
	}
	return nil
}
