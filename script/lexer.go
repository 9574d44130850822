package script

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// triggerChars start every non-text token form
const triggerChars = "{$/#"

const (
	argSeparator = "|,|"
	pageEndMark  = "/PAGE/"
)

var (
	reVariable = regexp.MustCompile(`^\$\{\{([^[:space:]{}]+)\}\}`)
	reCommand  = regexp.MustCompile(`^\{\{[ \t]*(\b\w+\b)[ \t]*:([^:\n]*)(: wait_for_kb )?\}\}(\n|$)`)
	reSymbol   = regexp.MustCompile(`^\$([^[:space:]]+)\$`)
	reChar     = regexp.MustCompile(`^\{(.)\}`)
	reSection  = regexp.MustCompile(`^#=\$ (.*) \$=#(\n|$)`)
)

// matcher tries to read one token at the start of stream.
// consumed is the byte length of the match.
type matcher func(stream string) (tok Token, consumed int, ok bool)

// matchers in priority order; the first success wins
var matchers = [...]matcher{
	matchVariable,
	matchCommand,
	matchSymbol,
	matchPageEnd,
	matchChar,
	matchSectionStart,
}

// Tokenize splits a story script into tokens.
// It never fails: malformed markup is kept as literal text.
func Tokenize(src string) []Token {
	var out []Token

	beg := 0
	pos := 0
	for beg < len(src) {
		off := strings.IndexAny(src[pos:], triggerChars)
		if off < 0 {
			out = append(out, Text(src[beg:]))
			break
		}
		pos += off

		tok, n, ok := matchAt(src[pos:])
		if !ok {
			// Trigger chars are ASCII so a single byte step stays on a rune boundary
			pos++
			continue
		}

		out = append(out, Text(src[beg:pos]), tok)
		pos += n
		beg = pos
	}

	filtered := out[:0]
	for _, t := range out {
		if !t.IsEmpty() {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func matchAt(stream string) (Token, int, bool) {
	for _, m := range matchers {
		if tok, n, ok := m(stream); ok {
			return tok, n, true
		}
	}
	return Token{}, 0, false
}

func matchVariable(stream string) (Token, int, bool) {
	m := reVariable.FindStringSubmatch(stream)
	if m == nil {
		return Token{}, 0, false
	}
	return Variable(m[1]), len(m[0]), true
}

// A command must take up an entire line
func matchCommand(stream string) (Token, int, bool) {
	m := reCommand.FindStringSubmatch(stream)
	if m == nil {
		return Token{}, 0, false
	}

	args := []string{}
	if m[2] != "" {
		for _, a := range strings.Split(m[2], argSeparator) {
			args = append(args, strings.TrimSpace(a))
		}
	}
	return Command(m[1], args, m[3] != ""), len(m[0]), true
}

func matchSymbol(stream string) (Token, int, bool) {
	m := reSymbol.FindStringSubmatch(stream)
	if m == nil {
		return Token{}, 0, false
	}
	return Symbol(m[1]), len(m[0]), true
}

func matchPageEnd(stream string) (Token, int, bool) {
	if !strings.HasPrefix(stream, pageEndMark) {
		return Token{}, 0, false
	}
	return PageEnd(), len(pageEndMark), true
}

func matchChar(stream string) (Token, int, bool) {
	m := reChar.FindStringSubmatch(stream)
	if m == nil {
		return Token{}, 0, false
	}
	r, _ := utf8.DecodeRuneInString(m[1])
	return Char(r), len(m[0]), true
}

// Section names that parse as an index are rejected, they would be
// indistinguishable from a positional jump target
func matchSectionStart(stream string) (Token, int, bool) {
	m := reSection.FindStringSubmatch(stream)
	if m == nil {
		return Token{}, 0, false
	}
	if _, err := strconv.ParseUint(m[1], 10, 64); err == nil {
		return Token{}, 0, false
	}
	return SectionStart(m[1]), len(m[0]), true
}
