package teller

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/tales/buffer"
	"github.com/lixenwraith/tales/imaging"
	"github.com/lixenwraith/tales/phrase"
	"github.com/lixenwraith/tales/script"
	"github.com/lixenwraith/tales/story"
)

const (
	defaultBackspacePace = 250 * time.Millisecond
	phraseSettle         = time.Second
	phraseTimeout        = 3 * time.Second
)

// command is one entry of the dispatch table. max < 0 means no upper bound.
// transitions marks commands that may leave a pending state instead of
// finishing within the step.
type command struct {
	min, max    int
	transitions bool
	run         func(t *StoryTeller, buf *buffer.TermBuffer, args []string) error
}

var commands = map[string]command{
	"backspace":             {min: 2, max: 4, transitions: true, run: cmdBackspace},
	"display_img":           {min: 1, max: 2, run: cmdDisplayImage},
	"prompt_yesno":          {min: 1, max: 2, run: cmdPromptYesNo},
	"jump_if_eq":            {min: 3, max: 4, run: cmdJumpIfEq},
	"pause":                 {min: 1, max: 1, transitions: true, run: cmdPause},
	"force_input":           {min: 1, max: 1, run: cmdForceInput},
	"choice_menu":           {min: 2, max: -1, run: cmdChoiceMenu},
	"wait_kb":               {min: 0, max: 0, transitions: true, run: cmdWaitKB},
	"move_cursor_back":      {min: 1, max: 1, run: cmdMoveCursorBack},
	"clear_screen":          {min: 0, max: 0, run: cmdClearScreen},
	"repeat":                {min: 3, max: 3, transitions: true, run: cmdRepeat},
	"random_word_generator": {min: 1, max: 1, run: cmdRandomWord},
}

// Commands lists the recognized command names
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	return names
}

func (c command) want() string {
	switch {
	case c.max < 0:
		return fmt.Sprintf("at least %d arguments", c.min)
	case c.min == c.max && c.min == 1:
		return "1 argument"
	case c.min == c.max:
		return fmt.Sprintf("%d arguments", c.min)
	}
	return fmt.Sprintf("%d to %d arguments", c.min, c.max)
}

// eval runs a command token against the buffer
func (t *StoryTeller) eval(buf *buffer.TermBuffer, tok script.Token) error {
	cmd, ok := commands[tok.Text]
	if !ok {
		return &CommandError{Name: tok.Text, Err: ErrUnknownCommand}
	}

	args := tok.Args
	// "{{ name : }}" carries a single empty argument
	if len(args) == 1 && args[0] == "" {
		args = nil
	}
	if len(args) < cmd.min || (cmd.max >= 0 && len(args) > cmd.max) {
		return &CommandError{
			Name: tok.Text,
			Err:  &ArgCountError{Command: tok.Text, Want: cmd.want(), Got: len(args)},
		}
	}

	t.log.Debug("command", "name", tok.Text, "args", args, "blocking", tok.Blocking)
	if err := cmd.run(t, buf, args); err != nil {
		return &CommandError{Name: tok.Text, Err: err}
	}
	return nil
}

// arg resolves a raw argument: it must lex to exactly one text, symbol or
// variable token. Variables are replaced by their value.
func (t *StoryTeller) arg(raw string) (string, error) {
	toks := script.Tokenize(raw)
	if len(toks) != 1 {
		return "", invalidArg("could not parse %q", raw)
	}
	switch tok := toks[0]; tok.Type {
	case script.TokenText, script.TokenSymbol:
		return tok.Text, nil
	case script.TokenVariable:
		return t.env.Get(tok.Text), nil
	}
	return "", invalidArg("%q is not text, a symbol or a variable", raw)
}

func (t *StoryTeller) intArg(raw string) (int, error) {
	s, err := t.arg(raw)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, invalidArg("%q is not a count", s)
	}
	return n, nil
}

func (t *StoryTeller) durationArg(raw string) (time.Duration, error) {
	s, err := t.arg(raw)
	if err != nil {
		return 0, err
	}
	return parseDuration(s)
}

// parseDuration reads "250ms", "1s" or "1m 30s" style durations
func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if err != nil {
		return 0, invalidArg("bad duration %q", s)
	}
	if d < 0 {
		return 0, invalidArg("negative duration %q", s)
	}
	return d, nil
}

func erase(buf *buffer.TermBuffer, unit story.DisplayUnit, n int) {
	if unit == story.DisplayWord {
		buf.EraseWords(n)
		return
	}
	buf.EraseChars(n)
}

// {{ backspace : num |,| chars|words [|,| one_by_one [|,| pace]] }}
func cmdBackspace(t *StoryTeller, buf *buffer.TermBuffer, args []string) error {
	n, err := t.intArg(args[0])
	if err != nil {
		return err
	}
	unit, err := story.ParseDisplayUnit(strings.TrimSpace(args[1]))
	if err != nil {
		return invalidArg("%v", err)
	}

	if len(args) < 3 || strings.TrimSpace(args[2]) != "one_by_one" {
		erase(buf, unit, n)
		t.flush(buf)
		return nil
	}

	pace := defaultBackspacePace
	if len(args) == 4 {
		if pace, err = t.durationArg(args[3]); err != nil {
			return err
		}
	}
	t.setPending(Backspacing{Unit: unit, Num: n, Pace: pace})
	return nil
}

// {{ display_img : path [|,| term] }}
func cmdDisplayImage(t *StoryTeller, buf *buffer.TermBuffer, args []string) error {
	name, err := t.arg(args[0])
	if err != nil {
		return err
	}
	mode := imaging.ModeASCII
	if len(args) == 2 && strings.EqualFold(strings.TrimSpace(args[1]), "term") {
		mode = imaging.ModeTerm
	}

	path := filepath.Join(t.opts.StoriesDirectory, name)
	if err := t.deps.Images.Render(t.deps.Out, path, mode, buf.Cols(), buf.Rows()); err != nil {
		return err
	}
	t.awaitKey()
	t.render(buf, buf.CurrentPage())
	return nil
}

// {{ prompt_yesno : var [|,| default] }}
func cmdPromptYesNo(t *StoryTeller, buf *buffer.TermBuffer, args []string) error {
	name, err := t.arg(args[0])
	if err != nil {
		return err
	}
	def := ""
	if len(args) == 2 {
		def = strings.TrimSpace(args[1])
	}
	t.env.Set(name, t.promptYesNo(buf, def))
	return nil
}

// {{ jump_if_eq : lhs |,| rhs |,| then [|,| else] }}
func cmdJumpIfEq(t *StoryTeller, _ *buffer.TermBuffer, args []string) error {
	lhs, err := t.arg(args[0])
	if err != nil {
		return err
	}
	rhs, err := t.arg(args[1])
	if err != nil {
		return err
	}

	target := ""
	switch {
	case lhs == rhs:
		target = args[2]
	case len(args) == 4:
		target = args[3]
	}
	if target = strings.TrimSpace(target); target == "" {
		return nil
	}
	return t.story.JumpToSection(target)
}

// {{ pause : duration }}
func cmdPause(t *StoryTeller, _ *buffer.TermBuffer, args []string) error {
	d, err := t.durationArg(args[0])
	if err != nil {
		return err
	}
	t.setPending(Sleeping{Start: t.deps.Now(), Dur: d})
	return nil
}

// {{ force_input : text }}
func cmdForceInput(t *StoryTeller, buf *buffer.TermBuffer, args []string) error {
	want, err := t.arg(args[0])
	if err != nil {
		return err
	}
	return t.forceInput(buf, want)
}

// {{ choice_menu : var |,| choice |,| choice ... }}
func cmdChoiceMenu(t *StoryTeller, buf *buffer.TermBuffer, args []string) error {
	name, err := t.arg(args[0])
	if err != nil {
		return err
	}
	choice, err := t.choiceMenu(buf, args[1:])
	if err != nil {
		return err
	}
	t.env.Set(name, choice)
	return nil
}

// {{ wait_kb : }}
func cmdWaitKB(t *StoryTeller, _ *buffer.TermBuffer, _ []string) error {
	t.waitKB()
	return nil
}

// {{ move_cursor_back : n }}
func cmdMoveCursorBack(t *StoryTeller, buf *buffer.TermBuffer, args []string) error {
	n, err := t.intArg(args[0])
	if err != nil {
		return err
	}
	buf.MoveCursor(-n)
	t.flush(buf)
	return nil
}

// {{ clear_screen : }}
func cmdClearScreen(t *StoryTeller, buf *buffer.TermBuffer, _ []string) error {
	buf.TurnPage()
	t.flush(buf)
	return nil
}

// {{ repeat : text |,| num |,| pace }}
func cmdRepeat(t *StoryTeller, _ *buffer.TermBuffer, args []string) error {
	text, err := t.arg(args[0])
	if err != nil {
		return err
	}
	n, err := t.intArg(args[1])
	if err != nil {
		return err
	}
	pace, err := t.durationArg(args[2])
	if err != nil {
		return err
	}
	t.setPending(Repeating{Text: text, Num: n, Pace: pace})
	return nil
}

// {{ random_word_generator : category }}
func cmdRandomWord(t *StoryTeller, buf *buffer.TermBuffer, args []string) error {
	category, err := t.arg(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), phraseTimeout)
	defer cancel()
	p, err := t.deps.Phrases.Phrase(ctx, phrase.Normalize(category))
	if err == nil {
		buf.WriteText(p)
		t.flush(buf)
	}
	t.deps.Sleep(phraseSettle)
	return err
}
