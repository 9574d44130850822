package story

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/tales/script"
)

// variableGuessWidth is the packing width reserved for a variable whose
// value is only known at playback time
const variableGuessWidth = 7

// UnitKind identifies the layout role of a Unit
type UnitKind uint8

const (
	UnitNone UnitKind = iota
	UnitChar
	UnitWord
	UnitWhiteSpace
	UnitSpecial // command, variable, symbol, page end or section start
)

// Unit is the atomic layout element of a story
type Unit struct {
	Kind  UnitKind
	Text  string       // Word and WhiteSpace
	Rune  rune         // Char
	Token script.Token // Special
}

func wordUnit(s string) Unit       { return Unit{Kind: UnitWord, Text: s} }
func whiteSpaceUnit(s string) Unit { return Unit{Kind: UnitWhiteSpace, Text: s} }

// FromToken expands a token into layout units.
// Text becomes alternating words and whitespace runs, and every newline
// is split into its own whitespace unit so each unit spans at most one row.
func FromToken(tok script.Token) []Unit {
	switch tok.Type {
	case script.TokenText:
		return splitText(tok.Text)
	case script.TokenChar:
		return []Unit{{Kind: UnitChar, Rune: tok.Char}}
	default:
		return []Unit{{Kind: UnitSpecial, Token: tok}}
	}
}

func splitText(s string) []Unit {
	var units []Unit

	start := 0
	inSpace := false
	flush := func(end int) {
		if end <= start {
			return
		}
		if inSpace {
			units = append(units, whiteSpaceUnit(s[start:end]))
		} else {
			units = append(units, wordUnit(s[start:end]))
		}
		start = end
	}

	for i, r := range s {
		space := unicode.IsSpace(r)
		if r == '\n' {
			flush(i)
			units = append(units, whiteSpaceUnit("\n"))
			start = i + 1
			inSpace = true
			continue
		}
		if space != inSpace {
			flush(i)
			inSpace = space
		}
	}
	flush(len(s))
	return units
}

// Area returns the (horizontal, vertical) terminal cells the unit occupies
// for packing purposes
func (u Unit) Area() (int, int) {
	switch u.Kind {
	case UnitChar:
		if u.Rune == '\n' {
			return 0, 1
		}
		return runewidth.RuneWidth(u.Rune), 0
	case UnitWord:
		// Trailing space included
		return runewidth.StringWidth(u.Text) + 1, 0
	case UnitWhiteSpace:
		w, h := 0, 0
		for _, r := range u.Text {
			switch r {
			case '\n':
				h++
			case 0:
			default:
				w++
			}
		}
		return w, h
	case UnitSpecial:
		switch u.Token.Type {
		case script.TokenVariable:
			return variableGuessWidth, 0
		case script.TokenSymbol:
			return runewidth.StringWidth(u.Token.Text) + 2, 0
		}
	}
	return 0, 0
}

// Letters returns the number of runes a char-by-char reveal steps through
func (u Unit) Letters() int {
	if u.Kind != UnitWord {
		return 1
	}
	return utf8.RuneCountInString(u.Text)
}

// Letter returns the i-th rune of a word
func (u Unit) Letter(i int) (rune, bool) {
	if u.Kind != UnitWord {
		return 0, false
	}
	runes := []rune(u.Text)
	if i < 0 || i >= len(runes) {
		return 0, false
	}
	return runes[i], true
}

func (u Unit) IsWord() bool         { return u.Kind == UnitWord }
func (u Unit) IsWhiteSpace() bool   { return u.Kind == UnitWhiteSpace }
func (u Unit) IsPageEnd() bool      { return u.Kind == UnitSpecial && u.Token.IsPageEnd() }
func (u Unit) IsSectionStart() bool { return u.Kind == UnitSpecial && u.Token.IsSectionStart() }
func (u Unit) IsCommand() bool      { return u.Kind == UnitSpecial && u.Token.IsCommand() }

func (u Unit) IsBlockingCommand() bool {
	return u.Kind == UnitSpecial && u.Token.IsBlockingCommand()
}

func (u Unit) String() string {
	switch u.Kind {
	case UnitChar:
		return fmt.Sprintf("Char(%q)", u.Rune)
	case UnitWord:
		return fmt.Sprintf("Word(%q)", u.Text)
	case UnitWhiteSpace:
		return fmt.Sprintf("WhiteSpace(%q)", u.Text)
	case UnitSpecial:
		return fmt.Sprintf("Special(%v)", u.Token)
	}
	return "None"
}
