// Package teller plays a paginated story into a cell buffer. A StoryTeller
// is a small state machine driven by a host loop that alternates Step
// (reveal content or advance an effect) and Transition (react to keys and
// timers).
package teller

// @focus: #playback { fsm, snippets, paging }

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/lixenwraith/tales/audio"
	"github.com/lixenwraith/tales/buffer"
	"github.com/lixenwraith/tales/config"
	"github.com/lixenwraith/tales/imaging"
	"github.com/lixenwraith/tales/phrase"
	"github.com/lixenwraith/tales/script"
	"github.com/lixenwraith/tales/story"
	"github.com/lixenwraith/tales/terminal"
)

const (
	nextPagePrompt = "Next page..."
	theEnd         = "The end..."

	// pollInterval paces non-blocking keyboard loops
	pollInterval = 20 * time.Millisecond
	// idleTick is slept by Step while nothing can progress without input
	idleTick = 10 * time.Millisecond
)

// Options are the playback settings, fixed for one telling
type Options struct {
	ScrollRate       config.ScrollRate
	DisplayUnit      story.DisplayUnit
	StoriesDirectory string
	PromptWhenWait   rune
	HasPrompt        bool
}

// OptionsFrom extracts playback settings from loaded configuration
func OptionsFrom(o *config.Options) Options {
	r, ok := o.PromptRune()
	return Options{
		ScrollRate:       o.Story.ScrollRate,
		DisplayUnit:      o.Story.DisplayUnit,
		StoriesDirectory: o.Story.StoriesDirectory,
		PromptWhenWait:   r,
		HasPrompt:        ok,
	}
}

// ImageRenderer draws an image file over the whole terminal
type ImageRenderer interface {
	Render(w io.Writer, path string, mode imaging.Mode, cols, rows int) error
}

// Deps are the capabilities a StoryTeller uses. Only Keyboard is required.
type Deps struct {
	Keyboard terminal.KeyboardSource
	Out      io.Writer
	Sleep    func(time.Duration)
	Now      func() time.Time
	Images   ImageRenderer
	Phrases  phrase.Source
	Cues     *audio.Cues
	Logger   *slog.Logger
}

func (d *Deps) fill() {
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.Sleep == nil {
		d.Sleep = time.Sleep
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Images == nil {
		d.Images = imaging.Renderer{}
	}
	if d.Phrases == nil {
		d.Phrases = phrase.NewOffline(time.Now().UnixNano())
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
}

// StoryTeller owns one story, its variables and the playback state
type StoryTeller struct {
	story *story.Story
	env   Variables
	opts  Options
	deps  Deps
	log   *slog.Logger

	state State
	over  bool
}

// New prepares a telling that starts in Telling
func New(s *story.Story, opts Options, deps Deps) (*StoryTeller, error) {
	if s == nil {
		return nil, errors.New("teller: nil story")
	}
	if deps.Keyboard == nil {
		return nil, ErrNoKeyboard
	}
	deps.fill()
	if opts.ScrollRate.Kind != config.ScrollPage {
		opts.ScrollRate.Num = max(opts.ScrollRate.Num, 1)
	}
	return &StoryTeller{
		story: s,
		env:   NewVariables(),
		opts:  opts,
		deps:  deps,
		log:   deps.Logger,
		state: Telling{},
	}, nil
}

func (t *StoryTeller) State() State         { return t.state }
func (t *StoryTeller) Story() *story.Story  { return t.story }
func (t *StoryTeller) Variables() Variables { return t.env }
func (t *StoryTeller) Options() Options     { return t.opts }

// Over reports whether the story ran to its end
func (t *StoryTeller) Over() bool { return t.over }

// Done reports whether the host loop should stop
func (t *StoryTeller) Done() bool { return t.over || t.isQuit() }

func (t *StoryTeller) isQuit() bool {
	_, ok := t.state.(Quit)
	return ok
}

func (t *StoryTeller) hasPending() bool {
	tl, ok := t.state.(Telling)
	return ok && tl.Pending != nil
}

func (t *StoryTeller) setState(next State) {
	t.log.Debug("state", "from", StateName(t.state), "to", StateName(next))
	t.state = next
}

// setPending records the state to enter on the next Transition. Outside
// Telling there is nothing to defer to and the state is entered directly.
func (t *StoryTeller) setPending(next State) {
	if tl, ok := t.state.(Telling); ok {
		tl.Pending = next
		t.state = tl
		return
	}
	t.setState(next)
}

// interrupt ends the telling from inside a blocking read
func (t *StoryTeller) interrupt() {
	t.log.Debug("interrupted", "state", StateName(t.state))
	t.setPending(Quit{})
}

// Step does one unit of work for the current state
func (t *StoryTeller) Step(buf *buffer.TermBuffer) SnippetInfo {
	switch st := t.state.(type) {
	case Telling:
		info := t.tellSnippet(buf)
		if info.IsStoryOver() {
			t.over = true
			return info
		}
		if info.ShouldWaitForKeypress(t.opts.ScrollRate) {
			t.waitKB()
		}
		return info

	case Backspacing:
		if st.Num > 0 {
			if st.Unit == story.DisplayWord {
				buf.EraseWords(1)
			} else {
				buf.EraseChars(1)
			}
			st.Num--
			t.state = st
			t.flush(buf)
			t.deps.Sleep(st.Pace)
		}

	case Repeating:
		if st.Num > 0 {
			buf.WriteANSI(st.Text)
			st.Num--
			t.state = st
			t.flush(buf)
			if st.Num > 0 {
				t.deps.Sleep(st.Pace)
			}
		}

	case Sleeping:
		if left := st.Dur - t.deps.Now().Sub(st.Start); left > 0 {
			t.deps.Sleep(min(left, idleTick))
		}

	case Paused, WaitingForKeypress:
		t.deps.Sleep(idleTick)

	case Quit:
		return StoryOver
	}
	return Nothing
}

// Transition polls one key and moves the state machine
func (t *StoryTeller) Transition(buf *buffer.TermBuffer) {
	key, pressed := t.deps.Keyboard.Poll()
	if !pressed && t.deps.Keyboard.Err() != nil {
		// Only a key can end these states
		switch t.state.(type) {
		case Paused, WaitingForKeypress:
			t.log.Debug("keyboard closed", "state", StateName(t.state), "error", t.deps.Keyboard.Err())
			t.quit()
			return
		}
	}
	if pressed {
		switch key {
		case 'p':
			t.togglePause()
			return
		case 'q', terminal.KeyEsc:
			// A "press any key" wait takes these as the key
			if st, ok := t.state.(WaitingForKeypress); ok {
				t.keyPressed(buf, st)
				return
			}
			t.quit()
			return
		case terminal.KeyCtrlC:
			t.quit()
			return
		}
	}

	switch st := t.state.(type) {
	case Backspacing:
		if st.Num == 0 {
			t.setState(Telling{})
		}
	case Repeating:
		if st.Num == 0 {
			t.setState(Telling{})
		}
	case WaitingForKeypress:
		if pressed {
			t.keyPressed(buf, st)
		}
	case Sleeping:
		if st.Elapsed(t.deps.Now()) {
			t.setState(Telling{})
		}
	case Telling:
		if st.Pending != nil {
			t.enter(buf, st.Pending)
		}
	}
}

func (t *StoryTeller) togglePause() {
	switch st := t.state.(type) {
	case Quit, WaitingForKeypress:
	case Paused:
		if st.Resume == nil {
			t.setState(Telling{})
			return
		}
		t.setState(st.Resume)
	default:
		t.setState(Paused{Resume: t.state})
	}
}

func (t *StoryTeller) quit() {
	if !t.isQuit() {
		t.setState(Quit{})
	}
}

func (t *StoryTeller) keyPressed(buf *buffer.TermBuffer, st WaitingForKeypress) {
	if st.HasPrompt {
		buf.EraseChars(1)
		t.flush(buf)
	}
	t.deps.Keyboard.Drain()
	t.setState(Telling{})
}

// enter applies a pending state, drawing the wait marker if there is one
func (t *StoryTeller) enter(buf *buffer.TermBuffer, next State) {
	if w, ok := next.(WaitingForKeypress); ok && w.HasPrompt {
		buf.WriteChar(w.Prompt)
		t.flush(buf)
	}
	t.setState(next)
}

// waitKB asks for a keypress before the telling goes on. A transition a
// command already requested wins.
func (t *StoryTeller) waitKB() {
	if t.hasPending() {
		return
	}
	t.deps.Keyboard.Drain()
	t.setPending(WaitingForKeypress{Prompt: t.opts.PromptWhenWait, HasPrompt: t.opts.HasPrompt})
}

// ShouldWaitForKeypress reports whether the host should block for a key
// after a snippet. Page ends already waited at the "Next page..." prompt.
func (s SnippetInfo) ShouldWaitForKeypress(rate config.ScrollRate) bool {
	if s.Blocking() {
		return true
	}
	span, ok := s.Ended()
	if !ok {
		return false
	}
	switch span {
	case story.SpanPage:
		return false
	case story.SpanLine:
		return true
	}
	return rate.Kind == config.ScrollWords
}

func (t *StoryTeller) tellSnippet(buf *buffer.TermBuffer) SnippetInfo {
	rate := t.opts.ScrollRate
	switch rate.Kind {
	case config.ScrollMillis:
		return t.tellMillis(buf, rate.Num, time.Duration(rate.Ms)*time.Millisecond)
	case config.ScrollWords:
		return t.tellWords(buf, rate.Num)
	case config.ScrollLines:
		return t.tellLines(buf, rate.Num)
	}
	return t.tellOnePage(buf)
}

// cut reports a reason to stop the snippet after the last unit
func (t *StoryTeller) cut() (SnippetInfo, bool) {
	if t.hasPending() {
		return Transitioning, true
	}
	if t.story.Current().IsBlockingCommand() {
		return EndedAtBlockingCommand(), true
	}
	return SnippetInfo{}, false
}

// tellMillis reveals num display units, then sleeps for pace
func (t *StoryTeller) tellMillis(buf *buffer.TermBuffer, num int, pace time.Duration) SnippetInfo {
	info := Nothing
	for i := 0; i < num; i++ {
		if _, ok := t.writeAndAdvance(buf, t.opts.DisplayUnit); !ok {
			info = StoryOver
			break
		}
		if c, ok := t.cut(); ok {
			info = c
			break
		}
	}
	t.flush(buf)
	if !info.IsStoryOver() {
		t.deps.Sleep(pace)
	}
	return info
}

// tellWords reveals num words; whitespace does not count
func (t *StoryTeller) tellWords(buf *buffer.TermBuffer, num int) SnippetInfo {
	info := EndedWith(story.SpanWord)
	for words := 0; words < num; {
		span, ok := t.writeAndAdvance(buf, story.DisplayWord)
		if !ok {
			info = StoryOver
			break
		}
		if c, ok := t.cut(); ok {
			info = c
			break
		}
		if span >= story.SpanLine {
			info = EndedWith(span)
			break
		}
		if span != story.SpanWhiteSpace {
			words++
		}
	}
	t.flush(buf)
	return info
}

func (t *StoryTeller) tellLines(buf *buffer.TermBuffer, num int) SnippetInfo {
	info := EndedWith(story.SpanLine)
	for lines := 0; lines < num; {
		span, ok := t.writeAndAdvance(buf, story.DisplayWord)
		if !ok {
			info = StoryOver
			break
		}
		if c, ok := t.cut(); ok {
			info = c
			break
		}
		if span >= story.SpanPage {
			info = EndedWith(span)
			break
		}
		if span == story.SpanLine {
			lines++
		}
	}
	t.flush(buf)
	return info
}

func (t *StoryTeller) tellOnePage(buf *buffer.TermBuffer) SnippetInfo {
	var info SnippetInfo
	for {
		span, ok := t.writeAndAdvance(buf, story.DisplayWord)
		if !ok {
			info = StoryOver
			break
		}
		if c, ok := t.cut(); ok {
			info = c
			break
		}
		if span >= story.SpanPage {
			info = EndedWith(span)
			break
		}
	}
	t.flush(buf)
	return info
}

// writeAndAdvance writes the unit under the bookmark and steps past it.
// ok is false when there was nothing left to write.
func (t *StoryTeller) writeAndAdvance(buf *buffer.TermBuffer, disp story.DisplayUnit) (span story.Span, ok bool) {
	if t.story.IsOver() {
		return t.story.Advance(disp), false
	}
	t.write(buf, disp)
	span = t.story.Advance(disp)

	switch span {
	case story.SpanLine:
		if _, col := buf.Cursor(); col != 0 {
			buf.WriteChar('\n')
		}
	case story.SpanPage:
		if !t.story.IsOver() {
			t.turnPage(buf)
		}
	case story.SpanSection:
		// A jump starts the section on a clean page
		buf.TurnPage()
		t.flush(buf)
	}
	return span, true
}

func (t *StoryTeller) write(buf *buffer.TermBuffer, disp story.DisplayUnit) {
	u := t.story.Current()
	switch u.Kind {
	case story.UnitWord:
		if disp == story.DisplayChar {
			if r, ok := u.Letter(t.story.Place().Letter); ok {
				buf.WriteChar(r)
			}
			return
		}
		buf.WriteText(u.Text)
		t.deps.Cues.Click()
	case story.UnitWhiteSpace:
		buf.WriteText(u.Text)
	case story.UnitChar:
		buf.WriteChar(u.Rune)
	case story.UnitSpecial:
		switch u.Token.Type {
		case script.TokenVariable:
			buf.WriteANSI(t.env.Get(u.Token.Text))
		case script.TokenSymbol:
			buf.WriteText("$" + u.Token.Text + "$")
		case script.TokenCommand:
			if err := t.eval(buf, u.Token); err != nil {
				t.reportError(buf, u.Token, err)
			}
		}
	}
}

// reportError shows a failed command inline; the telling goes on
func (t *StoryTeller) reportError(buf *buffer.TermBuffer, tok script.Token, err error) {
	t.log.Warn("command failed",
		"command", tok.Text,
		"args", tok.Args,
		"place", t.story.Place().String(),
		"error", err)
	buf.WriteText("\nError: " + err.Error())
	t.flush(buf)
	t.deps.Cues.Buzz()
}

// turnPage shows the page prompt, waits for a key and continues on a fresh
// page with default colors
func (t *StoryTeller) turnPage(buf *buffer.TermBuffer) {
	buf.WriteText("\n" + nextPagePrompt)
	t.flush(buf)
	t.deps.Cues.Chime()
	t.awaitKey()

	buf.TurnPage()
	buf.AddModifier(buffer.Foreground(buffer.DefaultColor))
	buf.AddModifier(buffer.Background(buffer.DefaultColor))
	t.flush(buf)
}

// flush paints the current page. When the last write spilled onto a new
// buffer page, the finished page is shown with a prompt first. An erase
// that already went back onto the earlier page needs no prompt.
func (t *StoryTeller) flush(buf *buffer.TermBuffer) {
	if buf.PageTurned() && buf.CurrentPage() > 0 {
		t.render(buf, buf.CurrentPage()-1)
		terminal.Actions{
			terminal.SetCursor(0, buf.Rows()-1),
			terminal.ResetColor(),
			terminal.EraseLine(),
		}.WriteTo(t.deps.Out)
		io.WriteString(t.deps.Out, nextPagePrompt)
		t.awaitKey()
	}
	t.render(buf, buf.CurrentPage())
}

func (t *StoryTeller) render(buf *buffer.TermBuffer, page int) {
	if err := buf.Render(t.deps.Out, page); err != nil {
		t.log.Error("render failed", "page", page, "error", err)
	}
}

// Finish shows the closing screen when the story ran to its end, then
// hands the terminal back with default attributes
func (t *StoryTeller) Finish(buf *buffer.TermBuffer) {
	if t.over && !t.isQuit() {
		buf.TurnPage()
		buf.UndoModifiers()
		buf.SetCursor(buf.Rows()/2, max(0, (buf.Cols()-len(theEnd))/2))
		buf.WriteText(theEnd)
		t.flush(buf)
		t.awaitKey()
	}
	terminal.Actions{
		terminal.ResetColor(),
		terminal.ClearScreen(),
		terminal.SetCursor(0, 0),
		terminal.AutoWrapOn(),
		terminal.CursorShow(),
	}.WriteTo(t.deps.Out)
	t.setState(Quit{})
}
