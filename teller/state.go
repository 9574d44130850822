package teller

import (
	"fmt"
	"time"

	"github.com/lixenwraith/tales/story"
)

// State is one variant of the playback state machine. The set is closed:
// only the types in this file implement it.
type State interface {
	stateName() string
}

// Telling reveals content. Pending holds the state a command asked for,
// entered on the next Transition.
type Telling struct {
	Pending State
}

// Paused freezes playback; Resume is entered when 'p' is pressed again
type Paused struct {
	Resume State
}

// Backspacing erases Num units of text, one per step, Pace apart
type Backspacing struct {
	Unit story.DisplayUnit
	Num  int
	Pace time.Duration
}

// Repeating writes Text Num more times, Pace apart
type Repeating struct {
	Text string
	Num  int
	Pace time.Duration
}

// WaitingForKeypress blocks until any byte arrives. Prompt is drawn while waiting.
type WaitingForKeypress struct {
	Prompt    rune
	HasPrompt bool
}

// Sleeping blocks until Dur has passed since Start
type Sleeping struct {
	Start time.Time
	Dur   time.Duration
}

// Quit is terminal
type Quit struct{}

func (Telling) stateName() string            { return "Telling" }
func (Paused) stateName() string             { return "Paused" }
func (Backspacing) stateName() string        { return "Backspacing" }
func (Repeating) stateName() string          { return "Repeating" }
func (WaitingForKeypress) stateName() string { return "WaitingForKeypress" }
func (Sleeping) stateName() string           { return "Sleeping" }
func (Quit) stateName() string               { return "Quit" }

// StateName returns the variant name, or "<nil>"
func StateName(s State) string {
	if s == nil {
		return "<nil>"
	}
	return s.stateName()
}

// Elapsed reports whether the sleep is over at now
func (s Sleeping) Elapsed(now time.Time) bool {
	return now.Sub(s.Start) >= s.Dur
}

func (b Backspacing) String() string {
	return fmt.Sprintf("Backspacing(%d %s every %v)", b.Num, b.Unit, b.Pace)
}

func (r Repeating) String() string {
	return fmt.Sprintf("Repeating(%q x%d every %v)", r.Text, r.Num, r.Pace)
}

// snippetKind classifies the outcome of one Telling step
type snippetKind uint8

const (
	snippetNothing snippetKind = iota
	snippetEnded
	snippetTransitioning
	snippetStoryOver
)

// SnippetInfo describes what ended a step
type SnippetInfo struct {
	kind     snippetKind
	span     story.Span
	blocking bool
}

var (
	Nothing       = SnippetInfo{kind: snippetNothing}
	Transitioning = SnippetInfo{kind: snippetTransitioning}
	StoryOver     = SnippetInfo{kind: snippetStoryOver}
)

// EndedWith reports a snippet that stopped after crossing span
func EndedWith(span story.Span) SnippetInfo {
	return SnippetInfo{kind: snippetEnded, span: span}
}

// EndedAtBlockingCommand reports a snippet that stopped in front of a
// command marked wait_for_kb
func EndedAtBlockingCommand() SnippetInfo {
	return SnippetInfo{kind: snippetEnded, blocking: true}
}

// Ended returns the span that closed the snippet
func (s SnippetInfo) Ended() (story.Span, bool) {
	return s.span, s.kind == snippetEnded && !s.blocking
}

func (s SnippetInfo) Blocking() bool    { return s.kind == snippetEnded && s.blocking }
func (s SnippetInfo) IsStoryOver() bool { return s.kind == snippetStoryOver }

func (s SnippetInfo) String() string {
	switch s.kind {
	case snippetEnded:
		if s.blocking {
			return "EndedWith(BlockingCommand)"
		}
		return "EndedWith(" + s.span.String() + ")"
	case snippetTransitioning:
		return "Transitioning"
	case snippetStoryOver:
		return "StoryOver"
	}
	return "Nothing"
}
