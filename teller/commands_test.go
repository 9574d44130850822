package teller

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/tales/config"
	"github.com/lixenwraith/tales/imaging"
	"github.com/lixenwraith/tales/script"
)

type stubImages struct {
	path       string
	mode       imaging.Mode
	cols, rows int
}

func (s *stubImages) Render(w io.Writer, path string, mode imaging.Mode, cols, rows int) error {
	s.path, s.mode, s.cols, s.rows = path, mode, cols, rows
	_, err := io.WriteString(w, "IMAGE")
	return err
}

type stubPhrases struct {
	category string
}

func (s *stubPhrases) Phrase(_ context.Context, category string) (string, error) {
	s.category = category
	return "otter", nil
}

func TestEvalErrors(t *testing.T) {
	h := newHarness(t, "x", config.OnePage())
	tests := []struct {
		tok  script.Token
		want error
	}{
		{script.Command("nope", nil, false), ErrUnknownCommand},
		{script.Command("pause", []string{""}, false), ErrArgCount},
		{script.Command("pause", []string{"1s", "2s"}, false), ErrArgCount},
		{script.Command("repeat", []string{"a", "b"}, false), ErrArgCount},
		{script.Command("pause", []string{"soon"}, false), ErrInvalidArg},
		{script.Command("repeat", []string{"a", "-1", "1s"}, false), ErrInvalidArg},
		{script.Command("move_cursor_back", []string{"a b {c}"}, false), ErrInvalidArg},
		{script.Command("backspace", []string{"1", "lines"}, false), ErrInvalidArg},
	}
	for _, tt := range tests {
		err := h.teller.eval(h.buf, tt.tok)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.tok, err, tt.want)
		}
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Name != tt.tok.Text {
			t.Errorf("%s: err %v is not a CommandError for the command", tt.tok, err)
		}
	}
}

func TestArgCountMessage(t *testing.T) {
	h := newHarness(t, "{{ pause : }}\nafter", config.OnePage())
	h.run(t)
	got := h.buf.String()
	if !strings.Contains(got, "Error: pause: 'pause' takes 1 argument, got 0") {
		t.Errorf("buffer = %q", got)
	}
	if !strings.HasSuffix(got, "after") {
		t.Errorf("telling did not continue: %q", got)
	}
}

func TestUnknownCommandIsReported(t *testing.T) {
	h := newHarness(t, "a {{ nope : }}\nb", config.OnePage())
	h.run(t)
	if got := h.buf.String(); !strings.Contains(got, "\nError: nope: unknown command") {
		t.Errorf("buffer = %q", got)
	}
}

func TestCommandTable(t *testing.T) {
	names := Commands()
	want := []string{
		"backspace", "display_img", "prompt_yesno", "jump_if_eq", "pause", "force_input",
		"choice_menu", "wait_kb", "move_cursor_back", "clear_screen", "repeat", "random_word_generator",
	}
	for _, w := range want {
		if !slices.Contains(names, w) {
			t.Errorf("missing command %s", w)
		}
	}
	if len(names) != len(want) {
		t.Errorf("got %d commands, want %d", len(names), len(want))
	}
}

func TestArgResolution(t *testing.T) {
	h := newHarness(t, "x", config.OnePage())
	h.teller.Variables().Set("n", "3")
	tests := []struct {
		raw  string
		want string
		err  bool
	}{
		{"plain text", "plain text", false},
		{"$sym$", "sym", false},
		{"${{n}}", "3", false},
		{"${{missing}}", "", false},
		{"a ${{n}}", "", true},
		{"{x}", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := h.teller.arg(tt.raw)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("arg(%q) = %q, %v", tt.raw, got, err)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"250ms", 250 * time.Millisecond, false},
		{"1s", time.Second, false},
		{"1m 30s", 90 * time.Second, false},
		{" 2s ", 2 * time.Second, false},
		{"-1s", 0, true},
		{"later", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("parseDuration(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestBackspaceImmediate(t *testing.T) {
	h := newHarness(t, "abcdef {{ backspace : 2 |,| chars }}\nxyz", config.OnePage())
	h.run(t)
	if got := h.buf.String(); got != "abcdexyz" {
		t.Errorf("buffer = %q, want abcdexyz", got)
	}
}

func TestBackspaceOneByOne(t *testing.T) {
	h := newHarness(t, "abc {{ backspace : 2 |,| chars |,| one_by_one |,| 5ms }}\nz", config.OnePage())

	info := h.teller.Step(h.buf)
	if info != Transitioning {
		t.Fatalf("step = %s, want Transitioning", info)
	}
	h.teller.Transition(h.buf)
	b, ok := h.teller.State().(Backspacing)
	if !ok || b.Num != 2 || b.Pace != 5*time.Millisecond {
		t.Fatalf("state = %v", h.teller.State())
	}

	h.run(t)
	if got := h.buf.String(); got != "abz" {
		t.Errorf("buffer = %q, want abz", got)
	}
}

func TestPauseCommandSleeps(t *testing.T) {
	h := newHarness(t, "a {{ pause : 1s }}\nb", config.OnePage())
	before := h.clock.now
	h.teller.Step(h.buf)
	h.teller.Transition(h.buf)
	if _, ok := h.teller.State().(Sleeping); !ok {
		t.Fatalf("state = %s, want Sleeping", StateName(h.teller.State()))
	}
	h.run(t)
	if d := h.clock.now.Sub(before); d < time.Second {
		t.Errorf("only %v passed", d)
	}
	if got := h.buf.String(); got != "a b" {
		t.Errorf("buffer = %q", got)
	}
}

func TestRepeatCommand(t *testing.T) {
	h := newHarness(t, "x{{ repeat : ab |,| 3 |,| 10ms }}\n", config.OnePage())
	h.run(t)
	if got := h.buf.String(); got != "xababab" {
		t.Errorf("buffer = %q, want xababab", got)
	}
}

func TestJumpIfEq(t *testing.T) {
	src := "start\n{{ jump_if_eq : ${{who}} |,| bob |,| end |,| middle }}\n" +
		"#=$ middle $=#\nskipped\n" +
		"#=$ end $=#\ndone"
	tests := []struct {
		who     string
		section string
		text    string
	}{
		{"bob", "end", "done"},
		{"eve", "middle", "skipped"},
	}
	for _, tt := range tests {
		h := newHarness(t, src, config.OnePage())
		h.teller.Variables().Set("who", tt.who)
		h.run(t)
		if got := h.teller.Story().SectionName(); got != tt.section {
			t.Errorf("who=%s: section = %q, want %q", tt.who, got, tt.section)
		}
		if got := h.buf.String(); !strings.Contains(got, tt.text) || !strings.HasPrefix(got, "start") {
			t.Errorf("who=%s: buffer = %q", tt.who, got)
		}
	}
}

func TestJumpIfEqWithoutElse(t *testing.T) {
	h := newHarness(t, "a {{ jump_if_eq : x |,| y |,| end }}\nb\n#=$ end $=#\nc", config.OnePage())
	h.run(t)
	if got := h.buf.String(); got != "a b\n" {
		t.Errorf("buffer = %q, want the first section only", got)
	}
}

func TestJumpToMissingSection(t *testing.T) {
	h := newHarness(t, "{{ jump_if_eq : x |,| x |,| nowhere }}\nb", config.OnePage())
	h.run(t)
	if got := h.buf.String(); !strings.Contains(got, "no such section") {
		t.Errorf("buffer = %q", got)
	}
}

func TestMoveCursorBack(t *testing.T) {
	h := newHarness(t, "abc {{ move_cursor_back : 2 }}\nX", config.OnePage())
	h.run(t)
	if got := h.buf.String(); got != "abX " {
		t.Errorf("buffer = %q, want 'abX '", got)
	}
}

func TestClearScreen(t *testing.T) {
	h := newHarness(t, "old {{ clear_screen : }}\nnew", config.OnePage())
	h.run(t)
	if got := h.buf.PageText(h.buf.CurrentPage()); got != "new" {
		t.Errorf("current page = %q, want new", got)
	}
}

func TestWaitKBCommand(t *testing.T) {
	h := newHarness(t, "a {{ wait_kb : }}\nb", config.OnePage())
	if info := h.teller.Step(h.buf); info != Transitioning {
		t.Fatalf("step = %s, want Transitioning", info)
	}
	h.teller.Transition(h.buf)
	if _, ok := h.teller.State().(WaitingForKeypress); !ok {
		t.Fatalf("state = %s", StateName(h.teller.State()))
	}
	if h.kb.drains == 0 {
		t.Error("pending input was not drained")
	}
}

func TestDisplayImage(t *testing.T) {
	img := &stubImages{}
	h := newHarness(t, "{{ display_img : pic.png |,| TERM }}\nafter", config.OnePage(), func(o *Options, d *Deps) {
		o.StoriesDirectory = "stories"
		d.Images = img
	})
	h.kb.push("x")
	h.run(t)

	if img.path != filepath.Join("stories", "pic.png") || img.mode != imaging.ModeTerm {
		t.Errorf("rendered %q in %s", img.path, img.mode)
	}
	if img.cols != testCols || img.rows != testRows {
		t.Errorf("size = %dx%d", img.cols, img.rows)
	}
	if !strings.Contains(h.out.String(), "IMAGE") {
		t.Error("image not written to output")
	}
	if got := h.buf.String(); got != "after" {
		t.Errorf("buffer = %q", got)
	}
}

func TestDisplayImageDefaultsToASCII(t *testing.T) {
	img := &stubImages{}
	h := newHarness(t, "{{ display_img : pic.png }}\n", config.OnePage(), func(_ *Options, d *Deps) {
		d.Images = img
	})
	h.kb.push("x")
	h.run(t)
	if img.mode != imaging.ModeASCII {
		t.Errorf("mode = %s", img.mode)
	}
}

func TestRandomWordGenerator(t *testing.T) {
	src := &stubPhrases{}
	h := newHarness(t, "{{ random_word_generator : Animal }}\n", config.OnePage(), func(_ *Options, d *Deps) {
		d.Phrases = src
	})
	before := h.clock.now
	h.run(t)
	if src.category != "animal" {
		t.Errorf("category = %q", src.category)
	}
	if got := h.buf.String(); got != "otter" {
		t.Errorf("buffer = %q", got)
	}
	if d := h.clock.now.Sub(before); d < time.Second {
		t.Errorf("slept %v after the phrase", d)
	}
}
