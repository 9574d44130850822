package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/lixenwraith/tales/story"
)

func TestParseScrollRate(t *testing.T) {
	tests := []struct {
		in   string
		want ScrollRate
		ok   bool
	}{
		{"page", OnePage(), true},
		{" PAGE ", OnePage(), true},
		{"millis:3:450", Millis(3, 450), true},
		{"millis:1:0", Millis(1, 0), true},
		{"words:5", Words(5), true},
		{"lines:2", Lines(2), true},
		{"words:0", ScrollRate{}, false},
		{"lines:-1", ScrollRate{}, false},
		{"millis:3", ScrollRate{}, false},
		{"millis:2:-5", ScrollRate{}, false},
		{"page:1", ScrollRate{}, false},
		{"fast", ScrollRate{}, false},
		{"", ScrollRate{}, false},
	}
	for _, tt := range tests {
		got, err := ParseScrollRate(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseScrollRate(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidScrollRate) {
			t.Errorf("ParseScrollRate(%q) err %v does not wrap ErrInvalidScrollRate", tt.in, err)
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseScrollRate(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestScrollRateStringRoundTrip(t *testing.T) {
	for _, r := range []ScrollRate{OnePage(), Millis(2, 120), Words(4), Lines(1)} {
		got, err := ParseScrollRate(r.String())
		if err != nil || got != r {
			t.Errorf("round trip of %v = %v, %v", r, got, err)
		}
	}
}

func TestLoadMissingWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.toml")

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if opts.Story.ScrollRate != OnePage() || opts.Story.StoriesDirectory != "stories" {
		t.Errorf("unexpected defaults %+v", opts.Story)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults were not written: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !slices.Equal(again.IgnorePatterns, []string{"*~", "#*#"}) {
		t.Errorf("ignore patterns = %v", again.IgnorePatterns)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "options.toml")

	opts := Default()
	opts.Story.ScrollRate = Millis(3, 80)
	opts.Story.DisplayUnit = story.DisplayChar
	opts.Story.PromptWhenWait = ""
	opts.Phrase.Timeout = Duration{750 * time.Millisecond}
	opts.Audio.Enabled = true

	if err := Save(path, opts); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Story != opts.Story {
		t.Errorf("story options = %+v, want %+v", got.Story, opts.Story)
	}
	if got.Phrase.Timeout.Duration != 750*time.Millisecond {
		t.Errorf("timeout = %v", got.Phrase.Timeout)
	}
	if !got.Audio.Enabled {
		t.Error("audio flag lost")
	}
	if _, ok := got.PromptRune(); ok {
		t.Error("empty prompt must disable the marker")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.toml")
	data := "[story]\nscroll_rate = \"words:3\"\nmystery = 1\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if opts.Story.ScrollRate != Words(3) {
		t.Errorf("scroll rate = %v", opts.Story.ScrollRate)
	}
	if opts.Story.StoriesDirectory != "stories" || opts.Logging.File != "tales.log" {
		t.Errorf("defaults lost: %+v", opts)
	}
	if r, ok := opts.PromptRune(); !ok || r != '>' {
		t.Errorf("PromptRune() = %q, %v", r, ok)
	}
	if keys := opts.UnknownKeys(); !slices.Equal(keys, []string{"story.mystery"}) {
		t.Errorf("UnknownKeys() = %v", keys)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"syntax":      "[story\n",
		"scroll rate": "[story]\nscroll_rate = \"sometimes\"\n",
		"prompt":      "[story]\nprompt_when_wait = \">>\"\n",
		"pattern":     "ignore_patterns = [\"[\"]\n",
		"volume":      "[audio]\nvolume = 3.0\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "options.toml")
			if err := os.WriteFile(path, []byte(data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TALES_STORIES_DIR", "/tmp/tales")
	t.Setenv("TALES_SCROLL_RATE", "lines:2")
	t.Setenv("TALES_DISPLAY_UNIT", "chars")

	opts := Default()
	if err := opts.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if opts.Story.StoriesDirectory != "/tmp/tales" || opts.Story.ScrollRate != Lines(2) || opts.Story.DisplayUnit != story.DisplayChar {
		t.Errorf("env not applied: %+v", opts.Story)
	}

	t.Setenv("TALES_SCROLL_RATE", "bogus")
	if err := Default().ApplyEnv(); !errors.Is(err, ErrInvalidScrollRate) {
		t.Errorf("ApplyEnv err = %v", err)
	}
}
