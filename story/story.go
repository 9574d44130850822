package story

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/tales/script"
)

var (
	ErrEmptyStory = errors.New("story has no content")
	ErrNoSection  = errors.New("no such section")
)

// DisplayUnit selects how much of a word is revealed per advance
type DisplayUnit uint8

const (
	DisplayWord DisplayUnit = iota
	DisplayChar
)

// ParseDisplayUnit accepts "chars" or "words", case-insensitively
func ParseDisplayUnit(s string) (DisplayUnit, error) {
	switch {
	case strings.EqualFold(s, "chars"), strings.EqualFold(s, "char"):
		return DisplayChar, nil
	case strings.EqualFold(s, "words"), strings.EqualFold(s, "word"):
		return DisplayWord, nil
	}
	return DisplayWord, fmt.Errorf("display unit must be 'chars' or 'words', got %q", s)
}

func (d DisplayUnit) String() string {
	if d == DisplayChar {
		return "chars"
	}
	return "words"
}

func (d DisplayUnit) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DisplayUnit) UnmarshalText(b []byte) error {
	v, err := ParseDisplayUnit(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Span is the coarsest boundary crossed by one Advance call
type Span uint8

const (
	SpanChar Span = iota
	SpanWord
	SpanWhiteSpace
	SpanLine
	SpanPage
	SpanSection
)

var spanNames = [...]string{"Char", "Word", "WhiteSpace", "Line", "Page", "Section"}

func (s Span) String() string {
	if int(s) < len(spanNames) {
		return spanNames[s]
	}
	return fmt.Sprintf("Span(%d)", uint8(s))
}

// Bookmark is a position in the paginated story, ordered lexicographically
type Bookmark struct {
	Section int
	Page    int
	Line    int
	Word    int
	Letter  int
}

// Compare returns -1, 0 or 1
func (b Bookmark) Compare(o Bookmark) int {
	for _, d := range [...][2]int{
		{b.Section, o.Section},
		{b.Page, o.Page},
		{b.Line, o.Line},
		{b.Word, o.Word},
		{b.Letter, o.Letter},
	} {
		switch {
		case d[0] < d[1]:
			return -1
		case d[0] > d[1]:
			return 1
		}
	}
	return 0
}

func (b Bookmark) Less(o Bookmark) bool { return b.Compare(o) < 0 }

func (b Bookmark) String() string {
	return fmt.Sprintf("%d:%d:%d:%d:%d", b.Section, b.Page, b.Line, b.Word, b.Letter)
}

// Story owns the flat unit list, its section/page/line index and the
// current reading position
type Story struct {
	units    []Unit
	sections []Section
	place    Bookmark

	// Set by JumpToSection, consumed by the next Advance
	jumped bool
}

// Parse tokenizes and paginates a story script
func Parse(src string, layout Layout) (*Story, error) {
	var units []Unit
	for _, tok := range script.Tokenize(src) {
		units = append(units, FromToken(tok)...)
	}
	return FromUnits(units, layout)
}

// FromUnits paginates an already expanded unit list
func FromUnits(units []Unit, layout Layout) (*Story, error) {
	if layout.MaxLineWidth < 1 {
		layout.MaxLineWidth = 1
	}
	if layout.MaxPageHeight < 1 {
		layout.MaxPageHeight = 1
	}
	if layout.MaxPageLen < 1 {
		layout.MaxPageLen = layout.MaxLineWidth * layout.MaxPageHeight
	}

	p := packer{units: units, layout: layout}
	sections := p.sections()

	pages := 0
	for _, s := range sections {
		pages += len(s.Pages)
	}
	if pages == 0 {
		return nil, ErrEmptyStory
	}

	return &Story{units: units, sections: sections}, nil
}

// End returns the sentinel bookmark one past the last unit of the current section
func (s *Story) End() Bookmark {
	return Bookmark{Section: s.place.Section, Page: len(s.sections[s.place.Section].Pages)}
}

// IsOver reports whether the bookmark reached the end of the current section
func (s *Story) IsOver() bool {
	return s.place.Compare(s.End()) >= 0
}

// Place returns the current bookmark
func (s *Story) Place() Bookmark { return s.place }

// Current returns the unit at the bookmark, or a zero Unit when the section is over
func (s *Story) Current() Unit {
	if s.IsOver() {
		return Unit{}
	}
	line := s.currentLine()
	return s.units[line.Start+s.place.Word]
}

func (s *Story) currentLine() Line {
	return s.sections[s.place.Section].Pages[s.place.Page].Lines[s.place.Line]
}

// Advance moves the bookmark forward by one letter or one unit and reports
// the coarsest boundary crossed. Char-by-char reveal falls through to a
// unit step once the last letter of a word has been shown.
func (s *Story) Advance(disp DisplayUnit) Span {
	if s.jumped {
		s.jumped = false
		return SpanSection
	}
	if s.IsOver() {
		return SpanSection
	}

	unit := s.Current()
	if disp == DisplayChar && unit.IsWord() {
		s.place.Letter++
		if s.place.Letter < unit.Letters() {
			return SpanChar
		}
	}

	span := SpanWord
	if unit.IsWhiteSpace() {
		span = SpanWhiteSpace
	}

	sec := s.sections[s.place.Section]
	page := sec.Pages[s.place.Page]

	s.place.Letter = 0
	s.place.Word++
	if s.place.Word >= page.Lines[s.place.Line].Len {
		s.place.Word = 0
		s.place.Line++
		span = SpanLine
		if s.place.Line >= len(page.Lines) {
			s.place.Line = 0
			s.place.Page++
			span = SpanPage
		}
	}
	return span
}

// JumpToSection moves the bookmark to the start of a section identified by
// zero-based index or by name
func (s *Story) JumpToSection(id string) error {
	idx := -1
	if n, err := strconv.Atoi(id); err == nil && n >= 0 && n < len(s.sections) {
		idx = n
	} else {
		for i, sec := range s.sections {
			if sec.Name == id {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNoSection, id)
	}

	s.place = Bookmark{Section: idx}
	s.jumped = true
	return nil
}

// SectionName returns the name of the active section
func (s *Story) SectionName() string { return s.sections[s.place.Section].Name }

func (s *Story) NumSections() int { return len(s.sections) }

// NumPages returns the page count of the active section
func (s *Story) NumPages() int { return len(s.sections[s.place.Section].Pages) }

// Units exposes the flat unit list for debug views
func (s *Story) Units() []Unit { return s.units }

// Sections exposes the pagination index
func (s *Story) Sections() []Section { return s.sections }
